package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.requireUser)

	mux := pat.New()

	mux.Get("/healthz", standardMiddleware.ThenFunc(app.health))

	// Offers. Fixed paths must precede :id patterns.
	mux.Post("/offers", authMiddleware.ThenFunc(app.offerHandler.CreateOffer))
	mux.Get("/offers/sent", authMiddleware.ThenFunc(app.offerHandler.ListSent))
	mux.Get("/offers/received", authMiddleware.ThenFunc(app.offerHandler.ListReceived))
	mux.Get("/offers/:id/rent-months", authMiddleware.ThenFunc(app.offerHandler.ListRentMonths))
	mux.Get("/offers/:id", authMiddleware.ThenFunc(app.offerHandler.GetOffer))
	mux.Put("/offers/:id/decision", authMiddleware.ThenFunc(app.offerHandler.Decide))
	mux.Post("/offers/:id/booking-transaction", authMiddleware.ThenFunc(app.offerHandler.CreateBookingTransaction))
	mux.Post("/offers/:id/rent-transaction", authMiddleware.ThenFunc(app.offerHandler.CreateRentTransaction))

	// Transactions
	mux.Get("/transactions/incoming", authMiddleware.ThenFunc(app.transactionHandler.ListIncoming))
	mux.Get("/transactions/outgoing", authMiddleware.ThenFunc(app.transactionHandler.ListOutgoing))
	mux.Get("/transactions/:id", authMiddleware.ThenFunc(app.transactionHandler.GetTransaction))
	mux.Post("/transactions/:id/paid", authMiddleware.ThenFunc(app.transactionHandler.MarkPaid))
	mux.Post("/transactions/:id/verify", authMiddleware.ThenFunc(app.transactionHandler.Verify))

	// Agreements
	mux.Post("/agreements", authMiddleware.ThenFunc(app.agreementHandler.CreateAgreement))
	mux.Get("/agreements/incoming", authMiddleware.ThenFunc(app.agreementHandler.ListIncoming))
	mux.Get("/agreements/sent", authMiddleware.ThenFunc(app.agreementHandler.ListSent))
	mux.Get("/agreements/:id", authMiddleware.ThenFunc(app.agreementHandler.GetAgreement))
	mux.Put("/agreements/:id/response", authMiddleware.ThenFunc(app.agreementHandler.Respond))

	return mux
}

func (app *application) health(w http.ResponseWriter, r *http.Request) {
	if err := app.db.PingContext(r.Context()); err != nil {
		app.errorLog.Printf("health: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.Write([]byte(`{"status":"ok"}`))
}

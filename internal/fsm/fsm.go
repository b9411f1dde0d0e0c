package fsm

import "rentflow/internal/models"

// Machine maps a status to the set of statuses reachable from it.
type Machine map[string]map[string]struct{}

// Offer lifecycle: a decision is final.
var Offer = Machine{
	models.OfferStatusPending: {
		models.OfferStatusAccepted: {},
		models.OfferStatusRejected: {},
	},
	models.OfferStatusAccepted: {},
	models.OfferStatusRejected: {},
}

// Transaction lifecycle. A failed attempt may still be confirmed as paid;
// refunds are terminal.
var Transaction = Machine{
	models.TransactionStatusCreated: {
		models.TransactionStatusPaid:   {},
		models.TransactionStatusFailed: {},
	},
	models.TransactionStatusFailed: {
		models.TransactionStatusPaid: {},
	},
	models.TransactionStatusPaid: {
		models.TransactionStatusRefunded: {},
	},
	models.TransactionStatusRefunded: {},
}

// Agreement lifecycle.
var Agreement = Machine{
	models.AgreementStatusDraft: {
		models.AgreementStatusSent: {},
	},
	models.AgreementStatusSent: {
		models.AgreementStatusAccepted: {},
		models.AgreementStatusRejected: {},
	},
	models.AgreementStatusAccepted: {},
	models.AgreementStatusRejected: {},
}

// CanTransition returns whether from can move to to. Staying put is always allowed.
func (m Machine) CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	allowed, ok := m[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// Known reports whether status belongs to the machine.
func (m Machine) Known(status string) bool {
	_, ok := m[status]
	return ok
}

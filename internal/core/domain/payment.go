package domain

import "net/url"

type PaymentState string

const (
	PaymentIdle             PaymentState = "IDLE"
	PaymentAwaitingApproval PaymentState = "AWAITING_APPROVAL"
	PaymentReconciling      PaymentState = "RECONCILING"
	PaymentConfirmed        PaymentState = "CONFIRMED"
	PaymentFailed           PaymentState = "FAILED"
)

var paymentTransitions = map[PaymentState][]PaymentState{
	PaymentIdle:             {PaymentAwaitingApproval, PaymentReconciling, PaymentFailed},
	PaymentAwaitingApproval: {PaymentReconciling, PaymentFailed},
	PaymentReconciling:      {PaymentConfirmed, PaymentFailed},
	PaymentConfirmed:        {},
	PaymentFailed:           {PaymentIdle},
}

func CanTransitionTo(from, to PaymentState) bool {
	for _, s := range paymentTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s PaymentState) IsTerminal() bool {
	return s == PaymentConfirmed || s == PaymentFailed
}

func (s PaymentState) String() string {
	return string(s)
}

// EntryMode tells the orchestrator which approval path a page load can take.
type EntryMode int

const (
	ModeFresh  EntryMode = iota // embedded approval (Path A)
	ModeReturn                  // back from the processor redirect (Path B)
)

func (m EntryMode) String() string {
	if m == ModeReturn {
		return "return"
	}
	return "fresh"
}

// PaymentSignal is how the orchestrator learns that the buyer approved a
// payment. It is either Approved or RedirectReturn.
type PaymentSignal interface {
	Reference() string
	Mode() EntryMode
	isPaymentSignal()
}

// Approved is the embedded widget callback carrying the processor order id.
type Approved struct {
	OrderID string
}

func (a Approved) Reference() string { return a.OrderID }
func (Approved) Mode() EntryMode     { return ModeFresh }
func (Approved) isPaymentSignal()    {}

// RedirectReturn is the buyer coming back from the processor's hosted page.
type RedirectReturn struct {
	Token   string
	PayerID string
}

func (r RedirectReturn) Reference() string { return r.Token }
func (RedirectReturn) Mode() EntryMode     { return ModeReturn }
func (RedirectReturn) isPaymentSignal()    {}

// ParseRedirectReturn extracts the processor's return parameters. ok is false
// when either is missing, which means the navigation is not a payment return.
func ParseRedirectReturn(q url.Values) (RedirectReturn, bool) {
	token := q.Get("token")
	payerID := q.Get("PayerID")
	if payerID == "" {
		payerID = q.Get("payerId")
	}
	if token == "" || payerID == "" {
		return RedirectReturn{}, false
	}
	return RedirectReturn{Token: token, PayerID: payerID}, true
}

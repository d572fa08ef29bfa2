package placement

import (
	"errors"

	"github.com/dshills/mcpizza/pkg/types"
)

// Step is one progress message from Place
type Step struct {
	Phase   string `json:"phase"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Outcome summarises a Place attempt
type Outcome struct {
	OrderID         string              `json:"order_id"`
	Status          types.Status        `json:"status"`
	Steps           []Step              `json:"steps"`
	Price           *types.PriceResult  `json:"pricing,omitempty"`
	Submit          *types.SubmitResult `json:"submission,omitempty"`
	Confirmation    string              `json:"confirmation,omitempty"`
	EstimatedWait   string              `json:"estimated_wait_minutes,omitempty"`
	Rejected        bool                `json:"rejected,omitempty"`
	FailedPhase     string              `json:"failed_phase,omitempty"`
	RejectionReason string              `json:"rejection_reason,omitempty"`
	StatusItems     []types.StatusItem  `json:"status_items,omitempty"`
	PossibleCauses  []string            `json:"possible_causes,omitempty"`
}

// Success reports whether the order was submitted
func (o *Outcome) Success() bool { return o.Status == types.StatusSubmitted }

func (o *Outcome) step(phase string, ok bool, msg string) {
	o.Steps = append(o.Steps, Step{Phase: phase, OK: ok, Message: msg})
}

// absorb copies failure detail from a phase error
func (o *Outcome) absorb(err error) {
	var rej *types.RemoteRejectionError
	if errors.As(err, &rej) {
		o.Rejected = true
		o.FailedPhase = rej.Phase
		o.RejectionReason = rej.Reason
		o.StatusItems = append([]types.StatusItem(nil), rej.StatusItems...)
		return
	}
	if len(o.Steps) > 0 {
		o.FailedPhase = o.Steps[len(o.Steps)-1].Phase
	}
	if o.FailedPhase == PhaseSubmit {
		o.PossibleCauses = append([]string(nil), PossibleCauses...)
	}
}

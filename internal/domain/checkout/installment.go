package checkout

import (
	"slices"
)

// ValidateInstallment checks the requested installment count against the
// allow-list. A single installment collapses the enabled set to [1];
// otherwise the whole allow-list is enabled.
func (a *Assembler) ValidateInstallment(requested int) (int, []int, error) {
	if !slices.Contains(a.cfg.Installments, requested) {
		return 0, nil, Invalidf(MsgInvalidInstallment)
	}
	if requested == 1 {
		return 1, []int{1}, nil
	}
	return requested, slices.Clone(a.cfg.Installments), nil
}

func requestedInstallment(s Scalar) (int, error) {
	if !s.IsSet() {
		return 1, nil
	}
	n, err := s.Int()
	if err != nil {
		return 0, Invalidf(MsgInvalidInstallment)
	}
	return n, nil
}

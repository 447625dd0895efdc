package funding

import "github.com/ethereum/go-ethereum/common"

// ListOpts filters events. Results are ordered by round, then sequence.
type ListOpts struct {
	Round  int64 // 0 matches every round
	Kind   Kind
	Funder *common.Address
	Limit  int
	Offset int
}

// Match reports whether e passes the filter, ignoring paging.
func (o ListOpts) Match(e *Event) bool {
	if o.Round != 0 && e.Round != o.Round {
		return false
	}
	if o.Kind != "" && e.Kind != o.Kind {
		return false
	}
	if o.Funder != nil && e.Funder != *o.Funder {
		return false
	}
	return true
}

package withdrawal

// ListOpts filters withdrawals. Results are ordered newest round first.
type ListOpts struct {
	Status Status
	Limit  int
	Offset int
}

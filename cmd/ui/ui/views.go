package ui

// ViewState represents the current screen of the console
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewQueue
	ViewDetail
	ViewForm
)

// Buckets are cycled with tab on the queue screen
var Buckets = []string{"pending", "approved", "rejected"}

// NextBucket returns the bucket after current, wrapping around
func NextBucket(current string) string {
	for i, b := range Buckets {
		if b == current {
			return Buckets[(i+1)%len(Buckets)]
		}
	}
	return Buckets[0]
}

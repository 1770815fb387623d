package corochan

// noCopy may be embedded into structs which must not be copied after
// first use, such as a Channel whose waiters point back into it. go
// vet's copylocks check recognizes it through the Lock and Unlock
// methods.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

package core

// DBOrdering is a single ORDER BY term; repositories map Field onto a
// whitelisted column and ignore anything else.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

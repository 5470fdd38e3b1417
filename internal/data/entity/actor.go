package entity

type Actor struct {
	Base
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
}

func (a *Actor) FullName() string {
	return a.FirstName + " " + a.LastName
}

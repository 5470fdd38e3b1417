package entity

// Play is a production; genres and actors are loaded through the link tables.
type Play struct {
	Base
	Title       string  `db:"title"`
	Description string  `db:"description"`
	Genres      []Genre `db:"-"`
	Actors      []Actor `db:"-"`
}

func (p *Play) GenreNames() []string {
	names := make([]string, 0, len(p.Genres))
	for _, g := range p.Genres {
		names = append(names, g.Name)
	}
	return names
}

func (p *Play) ActorNames() []string {
	names := make([]string, 0, len(p.Actors))
	for i := range p.Actors {
		names = append(names, p.Actors[i].FullName())
	}
	return names
}

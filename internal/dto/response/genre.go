package response

import "theatre-booking/internal/data/entity"

type GenreResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ActorResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

func GenreToResponse(g *entity.Genre) GenreResponse {
	return GenreResponse{ID: g.ID.String(), Name: g.Name}
}

func ActorToResponse(a *entity.Actor) ActorResponse {
	return ActorResponse{
		ID:        a.ID.String(),
		FirstName: a.FirstName,
		LastName:  a.LastName,
		FullName:  a.FullName(),
	}
}

package response

import "theatre-booking/internal/data/entity"

// PlayListResponse is the compact list shape: genre and actor names only.
type PlayListResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genres      []string `json:"genres"`
	Actors      []string `json:"actors"`
}

type PlayDetailResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Genres      []GenreResponse `json:"genres"`
	Actors      []ActorResponse `json:"actors"`
}

func PlayToListResponse(p *entity.Play) PlayListResponse {
	return PlayListResponse{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		Genres:      p.GenreNames(),
		Actors:      p.ActorNames(),
	}
}

func PlayToDetailResponse(p *entity.Play) PlayDetailResponse {
	genres := make([]GenreResponse, len(p.Genres))
	for i := range p.Genres {
		genres[i] = GenreToResponse(&p.Genres[i])
	}
	actors := make([]ActorResponse, len(p.Actors))
	for i := range p.Actors {
		actors[i] = ActorToResponse(&p.Actors[i])
	}

	return PlayDetailResponse{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		Genres:      genres,
		Actors:      actors,
	}
}

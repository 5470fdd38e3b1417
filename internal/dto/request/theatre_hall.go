package request

type TheatreHallRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Rows        int    `json:"rows" validate:"required,min=1,max=500"`
	SeatsInRows int    `json:"seats_in_rows" validate:"required,min=1,max=500"`
}

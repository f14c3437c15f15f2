package itinerary

type CreateItemRequest struct {
	Day      int    `json:"day" binding:"required,gte=1"`
	Title    string `json:"title" binding:"required"`
	Body     string `json:"body"`
	Location string `json:"location"`
}

type UpdateItemRequest struct {
	Day      int    `json:"day" binding:"required,gte=1"`
	Title    string `json:"title" binding:"required"`
	Body     string `json:"body"`
	Location string `json:"location"`
}

type CreateAlertRequest struct {
	Severity string `json:"severity"`
	Title    string `json:"title" binding:"required"`
	Message  string `json:"message" binding:"required"`
}

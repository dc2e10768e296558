package entities

type BookingEmailData struct {
	RecipientName      string
	Headline           string
	BookingID          string
	DogName            string
	ClientName         string
	SitterName         string
	StartTimeFormatted string
	EndTimeFormatted   string
	TotalPrice         string
	Status             string
	CurrentYear        int
}

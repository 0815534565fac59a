package profile

// Profile is the candidate resume being edited.
type Profile struct {
	Name       string       `json:"name"`
	Role       string       `json:"role"`
	Email      string       `json:"email"`
	Phone      string       `json:"phone"`
	Location   string       `json:"location"`
	LinkedIn   string       `json:"linkedin"`
	GitHub     string       `json:"github"`
	Summary    string       `json:"summary"`
	Skills     []string     `json:"skills"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
}

// Experience is one position held.
type Experience struct {
	ID          int    `json:"id"`
	Role        string `json:"role"`
	Company     string `json:"company"`
	Period      string `json:"period"`
	Description string `json:"description"`
}

// Education is one degree.
type Education struct {
	ID     int    `json:"id"`
	Degree string `json:"degree"`
	School string `json:"school"`
	Period string `json:"period"`
}

// ExperienceRewrite is a replacement description for the experience with the same ID.
type ExperienceRewrite struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

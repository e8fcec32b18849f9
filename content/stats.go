package content

// Statistics summarizes the site for the admin dashboard and the CLI.
type Statistics struct {
	Profile struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		Institution string `json:"institution"`
	} `json:"profile"`
	Content struct {
		NewsCount              int `json:"newsCount"`
		PublicationsCount      int `json:"publicationsCount"`
		AwardsCount            int `json:"awardsCount"`
		ExperienceCount        int `json:"experienceCount"`
		ResearchInterestsCount int `json:"researchInterestsCount"`
	} `json:"content"`
	Versions    int    `json:"versions"`
	LastUpdated string `json:"lastUpdated"`
}

// Stats counts the entries of each section of s. Versions and LastUpdated
// are filled in by the caller, which owns the snapshot history.
func Stats(s Site) Statistics {
	var st Statistics
	st.Profile.Name = s.Profile.Name["en"]
	st.Profile.Email = s.Profile.Email
	st.Profile.Institution = s.Profile.Institution.Name
	st.Content.NewsCount = len(s.News)
	st.Content.PublicationsCount = len(s.Publications.Items)
	st.Content.AwardsCount = len(s.Awards)
	st.Content.ExperienceCount = len(s.Experience)
	st.Content.ResearchInterestsCount = len(s.About.ResearchInterests)
	return st
}

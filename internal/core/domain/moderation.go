package domain

// ModerationReport carries the category scores returned by the external
// content classifier. Scores are in [0, 1].
type ModerationReport struct {
	Toxic     float64 `json:"toxic"`
	Indecent  float64 `json:"indecent"`
	Threat    float64 `json:"threat"`
	Offensive float64 `json:"offensive"`
	Erotic    float64 `json:"erotic"`
	Spam      float64 `json:"spam"`
}

// Acceptable reports whether every category score falls under its fixed
// threshold. All six must pass for a post to be accepted.
func (r ModerationReport) Acceptable() bool {
	return r.Toxic < 0.6 &&
		r.Indecent < 0.6 &&
		r.Threat < 0.6 &&
		r.Offensive < 0.8 &&
		r.Erotic < 0.6 &&
		r.Spam < 0.8
}

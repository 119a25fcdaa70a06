package types

// UpdateProfileRequest represents a request to update a user's profile.
// Pointer fields are patches: nil leaves the stored value alone. Timezone
// changes shift every reminder the user has configured, so the service
// rejects zones the tz database does not know.
type UpdateProfileRequest struct {
	Username          string  `json:"username,omitempty"`
	Bio               *string `json:"bio,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
	Timezone          *string `json:"timezone,omitempty"`
}

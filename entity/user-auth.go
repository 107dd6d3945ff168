package entity

// UserAuth identifies the holder of an API key.
type UserAuth struct {
	Username string `json:"username" bson:"username"`
	Token    string `json:"token" bson:"token"`
}

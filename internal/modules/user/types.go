package user

type UpdateUserDTO struct {
	Name           *string `json:"name"`
	ProfilePicture *string `json:"profilePicture"`
}

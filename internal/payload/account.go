package payload

import "github.com/pattarapol/jotter-api/internal/model"

type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type ConnectProviderRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
}

type ConnectEmailRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

type ProviderLinkResponse struct {
	ProviderEmail string `json:"provider_email"`
}

type UserResponse struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	Email    *string               `json:"email"`
	IsVerify bool                  `json:"is_verify"`
	Google   *ProviderLinkResponse `json:"google"`
	Facebook *ProviderLinkResponse `json:"facebook"`
}

// NewUserResponse maps a user document to its API shape. Password and
// refresh-token hashes never leave the server.
func NewUserResponse(user *model.User) UserResponse {
	resp := UserResponse{
		ID:       user.ID.Hex(),
		Name:     user.Name,
		Email:    user.Email,
		IsVerify: user.IsVerify,
	}

	if user.Google != nil {
		resp.Google = &ProviderLinkResponse{ProviderEmail: user.Google.ProviderEmail}
	}
	if user.Facebook != nil {
		resp.Facebook = &ProviderLinkResponse{ProviderEmail: user.Facebook.ProviderEmail}
	}

	return resp
}

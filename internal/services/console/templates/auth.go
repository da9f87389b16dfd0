package templates

// LoginView is the sign-in form state.
type LoginView struct {
	Email    string
	Redirect string
	Error    string
}

// ResetPasswordView is the reset form state.
type ResetPasswordView struct {
	Token string
	// TokenValid is false when the link is missing, expired or unknown.
	TokenValid bool
	TokenError string
	Error      string
}

func resetLinkMessage(loc Localizer, view ResetPasswordView) string {
	if view.TokenError != "" {
		return view.TokenError
	}
	return T(loc, "reset.invalid_link")
}

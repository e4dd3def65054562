////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package api

import "github.com/pkg/errors"

// User is the account object returned by the auth endpoints and stored in the
// client session.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// AuthResponse is the shared response shape of the signup and signin
// endpoints.
type AuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    User   `json:"user"`
	Message string `json:"message"`
}

type signUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type signInRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

type validateResponse struct {
	Valid bool `json:"valid"`
}

// SignUp creates an account. On success the returned token is set on the
// client so subsequent authenticated calls work without further setup.
func (c *Client) SignUp(username, email, password, fullName string) (
	*AuthResponse, error) {

	resp := &AuthResponse{}
	err := c.post("/api/v1/auth/signup", signUpRequest{
		Username: username,
		Email:    email,
		Password: password,
		FullName: fullName,
	}, resp, false)
	if err != nil {
		return nil, err
	}

	if !resp.Success {
		return resp, errors.Errorf("signup rejected: %s", resp.Message)
	}

	c.SetToken(resp.Token)
	return resp, nil
}

// SignIn authenticates with a username or email address. On success the
// returned token is set on the client.
func (c *Client) SignIn(usernameOrEmail, password string) (
	*AuthResponse, error) {

	resp := &AuthResponse{}
	err := c.post("/api/v1/auth/signin", signInRequest{
		UsernameOrEmail: usernameOrEmail,
		Password:        password,
	}, resp, false)
	if err != nil {
		return nil, err
	}

	if !resp.Success {
		return resp, errors.Errorf("signin rejected: %s", resp.Message)
	}

	c.SetToken(resp.Token)
	return resp, nil
}

// ValidateToken asks the server whether the bearer token currently set on the
// client is still good. A false return with a nil error means the server
// rejected the token; the stored session should be cleared.
func (c *Client) ValidateToken() (bool, error) {
	resp := validateResponse{}
	err := c.do("POST", "/api/v1/auth/validate", nil, &resp, true)
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			return false, nil
		}
		return false, err
	}
	return resp.Valid, nil
}

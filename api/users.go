////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package api

// LookupUser fetches the profile of a user by username. It backs the
// display-name cache; callers treat any error as "show the raw username".
func (c *Client) LookupUser(username string) (*User, error) {
	user := &User{}
	if err := c.get("/api/v1/users/"+username, user); err != nil {
		return nil, err
	}
	return user, nil
}

////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cmd

import (
	"time"

	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
	"gitlab.com/xx_network/primitives/netTime"

	"gitlab.com/substring/chat-client/api"
	"gitlab.com/substring/chat-client/storage"
)

func timeNow() time.Time {
	return netTime.Now()
}

// openSession opens the on-disk session store named by the session flags.
func openSession() *storage.Session {
	sess, err := storage.LoadFilestore(viper.GetString("session"),
		viper.GetString("password"))
	if err != nil {
		jww.FATAL.Panicf("%+v", err)
	}
	return sess
}

// authedClient loads the stored credentials, validates the token against the
// server, and returns a ready REST client plus the signed-in user. A missing
// or rejected session is fatal with a pointer at the signin command; the
// rejected session is cleared first, matching the browser client's redirect
// to the sign-in screen.
func authedClient(sess *storage.Session) (*api.Client, api.User) {
	token, user, err := sess.Credentials()
	if err != nil {
		jww.FATAL.Panicf("Authentication required: %+v "+
			"(run 'chat-client signin')", err)
	}

	client := api.NewClient(viper.GetString("server"))
	client.SetToken(token)

	valid, err := client.ValidateToken()
	if err != nil {
		jww.FATAL.Panicf("Could not validate stored session: %+v", err)
	}
	if !valid {
		_ = sess.Clear()
		jww.FATAL.Panicf("Stored session was rejected by the server; " +
			"run 'chat-client signin'")
	}

	return client, user
}

////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Handles the signup, signin, and signout subcommands.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"

	"gitlab.com/substring/chat-client/api"
)

var signUpCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and store the session locally",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		initLogging()

		client := api.NewClient(viper.GetString("server"))
		resp, err := client.SignUp(
			viper.GetString("signupUsername"),
			viper.GetString("signupEmail"),
			viper.GetString("signupPassword"),
			viper.GetString("signupFullname"))
		if err != nil {
			jww.FATAL.Panicf("%+v", err)
		}

		if err = openSession().SaveCredentials(
			resp.Token, resp.User); err != nil {
			jww.FATAL.Panicf("%+v", err)
		}

		fmt.Printf("Account created for %s (%s)\n",
			resp.User.Username, resp.User.FullName)
	},
}

var signInCmd = &cobra.Command{
	Use:   "signin",
	Short: "Authenticate and store the session locally",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		initLogging()

		client := api.NewClient(viper.GetString("server"))
		resp, err := client.SignIn(
			viper.GetString("signinUsername"),
			viper.GetString("signinPassword"))
		if err != nil {
			jww.FATAL.Panicf("%+v", err)
		}

		if err = openSession().SaveCredentials(
			resp.Token, resp.User); err != nil {
			jww.FATAL.Panicf("%+v", err)
		}

		fmt.Printf("Signed in as %s\n", resp.User.Username)
	},
}

var signOutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Clear the locally stored session",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		initLogging()

		if err := openSession().Clear(); err != nil {
			jww.FATAL.Panicf("%+v", err)
		}
		fmt.Println("Signed out")
	},
}

func init() {
	signUpCmd.Flags().StringP("username", "u", "", "Account username")
	viper.BindPFlag("signupUsername", signUpCmd.Flags().Lookup("username"))

	signUpCmd.Flags().StringP("email", "e", "", "Account email address")
	viper.BindPFlag("signupEmail", signUpCmd.Flags().Lookup("email"))

	signUpCmd.Flags().StringP("user-password", "", "",
		"Account password (distinct from the session file password)")
	viper.BindPFlag("signupPassword",
		signUpCmd.Flags().Lookup("user-password"))

	signUpCmd.Flags().StringP("fullname", "", "", "Display name")
	viper.BindPFlag("signupFullname", signUpCmd.Flags().Lookup("fullname"))

	signInCmd.Flags().StringP("username", "u", "",
		"Account username or email")
	viper.BindPFlag("signinUsername", signInCmd.Flags().Lookup("username"))

	signInCmd.Flags().StringP("user-password", "", "", "Account password")
	viper.BindPFlag("signinPassword",
		signInCmd.Flags().Lookup("user-password"))

	rootCmd.AddCommand(signUpCmd)
	rootCmd.AddCommand(signInCmd)
	rootCmd.AddCommand(signOutCmd)
}

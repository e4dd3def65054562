////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Handles the rooms subcommands: listing, creating, and joining rooms.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List all rooms on the server",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		initLogging()

		client, _ := authedClient(openSession())
		rooms, err := client.Rooms()
		if err != nil {
			jww.FATAL.Panicf("%+v", err)
		}

		if len(rooms) == 0 {
			fmt.Println("No rooms yet; create one with 'rooms create'")
			return
		}
		for i := range rooms {
			fmt.Printf("%s  %s (created by %s)\n",
				rooms[i].RoomID, rooms[i].Name(), rooms[i].CreatedBy)
		}
	},
}

var roomsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a room, optionally protected by a password",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		initLogging()

		client, user := authedClient(openSession())
		room, err := client.CreateRoom(
			viper.GetString("roomName"),
			user.Username,
			viper.GetString("createRoomPassword"))
		if err != nil {
			jww.FATAL.Panicf("%+v", err)
		}

		fmt.Printf("Room %q created with id %s\n", room.Name(), room.RoomID)
	},
}

var roomsJoinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join a room by its id",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		initLogging()

		client, user := authedClient(openSession())
		room, err := client.JoinRoom(
			viper.GetString("joinRoomID"),
			user.Username,
			viper.GetString("joinRoomPassword"))
		if err != nil {
			jww.FATAL.Panicf("%+v", err)
		}

		fmt.Printf("Joined %q; start chatting with 'chat --room %s'\n",
			room.Name(), room.RoomID)
	},
}

func init() {
	roomsCreateCmd.Flags().StringP("name", "n", "", "Room display name")
	viper.BindPFlag("roomName", roomsCreateCmd.Flags().Lookup("name"))

	roomsCreateCmd.Flags().StringP("room-password", "", "",
		"Optional room password")
	viper.BindPFlag("createRoomPassword",
		roomsCreateCmd.Flags().Lookup("room-password"))

	roomsJoinCmd.Flags().StringP("room", "r", "", "Room id to join")
	viper.BindPFlag("joinRoomID", roomsJoinCmd.Flags().Lookup("room"))

	roomsJoinCmd.Flags().StringP("room-password", "", "",
		"Room password, if the room has one")
	viper.BindPFlag("joinRoomPassword",
		roomsJoinCmd.Flags().Lookup("room-password"))

	roomsCmd.AddCommand(roomsCreateCmd)
	roomsCmd.AddCommand(roomsJoinCmd)
	rootCmd.AddCommand(roomsCmd)
}

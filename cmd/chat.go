////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Handles the interactive chat subcommand: one realtime room session driven
// from stdin.

package cmd

import (
	"bufio"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"

	"gitlab.com/substring/chat-client/api"
	"gitlab.com/substring/chat-client/chat"
	"gitlab.com/substring/chat-client/realtime"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Enter a room and chat in real time",
	Long: "Connects to the room's realtime channel, prints history and " +
		"incoming messages, and sends each stdin line as a message. " +
		"'/upload <path>' sends a file, '/quit' leaves the room.",
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		initLogging()

		roomID := viper.GetString("chatRoomID")
		if roomID == "" {
			jww.FATAL.Panicf("No room given; use --room")
		}

		client, user := authedClient(openSession())

		// Joining is idempotent and checks the room password, so it runs
		// on every entry rather than only the first.
		room, err := client.JoinRoom(roomID, user.Username,
			viper.GetString("chatRoomPassword"))
		if err != nil {
			jww.FATAL.Panicf("%+v", err)
		}

		session, err := realtime.NewSession(viper.GetString("server"),
			client.Token(), roomID)
		if err != nil {
			jww.FATAL.Panicf("%+v", err)
		}

		model := &consoleModel{me: user.Username}
		mgr := chat.NewManager(client, session, user, roomID, model)
		model.mgr = mgr

		mgr.Start()
		session.Start()
		defer mgr.Close()

		fmt.Printf("Entering %q as %s. '/quit' leaves the room.\n",
			room.Name(), user.Username)

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			switch {
			case line == "/quit":
				return
			case strings.HasPrefix(line, "/upload "):
				uploadFile(mgr, strings.TrimSpace(
					strings.TrimPrefix(line, "/upload ")))
			default:
				if err := mgr.SendText(line); err != nil {
					fmt.Printf("send failed: %s\n", err)
				}
			}
		}
	},
}

// uploadFile validates and ships one attachment from the local filesystem.
func uploadFile(mgr *chat.Manager, path string) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("upload failed: %s\n", err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		fmt.Printf("upload failed: %s\n", err)
		return
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if i := strings.Index(mimeType, ";"); i != -1 {
		mimeType = mimeType[:i]
	}

	err = mgr.SendAttachment(filepath.Base(path), mimeType, info.Size(), f)
	if err != nil {
		fmt.Printf("upload failed: %s\n", err)
		return
	}
	fmt.Printf("uploaded %s\n", filepath.Base(path))
}

// consoleModel renders chat events to stdout. Incoming messages consult the
// manager's display-name cache at print time.
type consoleModel struct {
	mgr     *chat.Manager
	me      string
	lastDay string
}

func (c *consoleModel) printMessage(msg *api.Message) {
	if day := chat.DayLabel(msg.Time(), timeNow()); day != c.lastDay {
		c.lastDay = day
		if day != "" {
			fmt.Printf("----- %s -----\n", day)
		}
	}

	name := c.mgr.DisplayName(msg)
	if msg.Sender == c.me {
		name = "You"
	}

	stamp := msg.Time().Local().Format("15:04")
	if msg.HasAttachment() {
		fmt.Printf("[%s] %s sent %s: %s\n",
			stamp, name, msg.Type(), msg.DisplayFileName())
		return
	}
	fmt.Printf("[%s] %s: %s\n", stamp, name, msg.Content)
}

func (c *consoleModel) MessageReceived(msg api.Message) {
	c.printMessage(&msg)
}

func (c *consoleModel) HistoryLoaded(msgs []api.Message) {
	c.lastDay = ""
	for i := range msgs {
		c.printMessage(&msgs[i])
	}
}

func (c *consoleModel) NameResolved(username, fullName string) {
	jww.DEBUG.Printf("[CHAT] %s resolves to %q", username, fullName)
}

func (c *consoleModel) ConnectionUpdated(state realtime.State) {
	switch state {
	case realtime.Connected:
		fmt.Println("* connected")
	case realtime.Disconnected:
		fmt.Println("* reconnecting...")
	}
}

func (c *consoleModel) RoomUpdated(name string) {
	fmt.Printf("* room: %s\n", name)
}

func (c *consoleModel) OnlineCount(n int) {
	fmt.Printf("* %d online\n", n)
}

func init() {
	chatCmd.Flags().StringP("room", "r", "", "Room id to enter")
	viper.BindPFlag("chatRoomID", chatCmd.Flags().Lookup("room"))

	chatCmd.Flags().StringP("room-password", "", "",
		"Room password, if the room has one")
	viper.BindPFlag("chatRoomPassword",
		chatCmd.Flags().Lookup("room-password"))

	rootCmd.AddCommand(chatCmd)
}

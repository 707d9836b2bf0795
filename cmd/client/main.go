package main

import (
	"errors"
	"fileserver-lab/client"
	"fileserver-lab/protocol"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
)

var flagServer = &cli.StringFlag{
	Name:    "server",
	Value:   "127.0.0.1:12345",
	Usage:   "File server address",
	EnvVars: []string{"FILESERVER_ADDR"},
}
var flagUser = &cli.StringFlag{
	Name:     "user",
	Usage:    "Username (at most 16 bytes)",
	Required: true,
	EnvVars:  []string{"FILESERVER_USER"},
}
var flagPassword = &cli.StringFlag{
	Name:     "password",
	Usage:    "Password the signature is derived from",
	Required: true,
	EnvVars:  []string{"FILESERVER_PASSWORD"},
}
var flagCredentialsDir = &cli.StringFlag{
	Name:  "credentials-dir",
	Value: ".",
	Usage: "Directory holding <user>.yaml credential files",
}
var flagOutputDir = &cli.StringFlag{
	Name:  "out",
	Value: ".",
	Usage: "Directory fetched files are written to",
}
var flagTimeout = &cli.DurationFlag{
	Name:  "timeout",
	Value: 10 * time.Second,
	Usage: "Time allowed for one request",
}
var flagLogLevel = &cli.StringFlag{
	Name:    "log-level",
	Value:   "WARN",
	EnvVars: []string{"LOG_LEVEL"},
}
var flagBlocks = &cli.BoolFlag{
	Name:  "blocks",
	Usage: "Print the received blocks",
}

func main() {
	app := &cli.App{
		Name:  "fileserver-client",
		Usage: "register with and fetch files from a file server",
		Flags: []cli.Flag{flagServer, flagUser, flagPassword, flagCredentialsDir, flagTimeout, flagLogLevel},
		Commands: []*cli.Command{
			{
				Name:   "register",
				Usage:  "register the user with the server",
				Action: registerAction,
			},
			{
				Name:      "fetch",
				Usage:     "fetch one or more files",
				ArgsUsage: "<path> [path...]",
				Flags:     []cli.Flag{flagOutputDir, flagBlocks},
				Action:    fetchAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
		os.Exit(exitRuntime)
	}
	os.Exit(exitOK)
}

func newClient(cCtx *cli.Context) *client.Client {
	log := logs.GetLoggerFromString(cCtx.String(flagLogLevel.Name))
	return client.New(cCtx.String(flagServer.Name), cCtx.Duration(flagTimeout.Name), log)
}

func registerAction(cCtx *cli.Context) error {
	username := cCtx.String(flagUser.Name)
	path, err := client.CredentialsPath(cCtx.String(flagCredentialsDir.Name), username)
	if err != nil {
		return err
	}

	// A salt already stored for this user is reused, so that a lost reply can be retried.
	credentials, err := client.LoadCredentials(path)
	stored := err == nil
	if errors.Is(err, fs.ErrNotExist) {
		credentials, err = client.NewCredentials(username)
	}
	if err != nil {
		return err
	}

	signature, err := credentials.Signature(cCtx.String(flagPassword.Name))
	if err != nil {
		return err
	}

	response, err := newClient(cCtx).Register(cCtx.Context, username, signature)
	if err != nil {
		return err
	}
	printStatus(response)
	if response.Status != protocol.StatusOK {
		return fmt.Errorf("registration refused: %s", response.Status)
	}

	if !stored {
		if err := credentials.Save(path); err != nil {
			return err
		}
		fmt.Printf("Credentials stored in %s\n", path)
	}
	return nil
}

func fetchAction(cCtx *cli.Context) error {
	if cCtx.NArg() == 0 {
		return fmt.Errorf("no file to fetch")
	}
	username := cCtx.String(flagUser.Name)

	path, err := client.CredentialsPath(cCtx.String(flagCredentialsDir.Name), username)
	if err != nil {
		return err
	}
	credentials, err := client.LoadCredentials(path)
	if err != nil {
		return fmt.Errorf("register first: %w", err)
	}
	signature, err := credentials.Signature(cCtx.String(flagPassword.Name))
	if err != nil {
		return err
	}

	c := newClient(cCtx)
	var failed int
	for _, path := range cCtx.Args().Slice() {
		response, err := c.Fetch(cCtx.Context, username, signature, path)
		if err != nil {
			return err
		}
		printStatus(response)
		if cCtx.Bool(flagBlocks.Name) {
			printBlocks(response)
		}
		if response.Status != protocol.StatusOK {
			failed++
			continue
		}

		saved, err := client.SaveFile(cCtx.String(flagOutputDir.Name), path, response.Payload)
		if err != nil {
			return err
		}
		fmt.Printf("Retrieved %s (%d bytes) into %s\n", path, len(response.Payload), saved)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d fetches failed", failed, cCtx.NArg())
	}
	return nil
}

func printStatus(response protocol.Response) {
	if response.Status != protocol.StatusOK {
		status := color.New(color.FgRed, color.OpBold).Render(response.Status.String())
		fmt.Printf("%s: %s\n", status, string(response.Payload))
		return
	}
	status := color.New(color.FgGreen, color.OpBold).Render(response.Status.String())
	fmt.Printf("%s (%d blocks)\n", status, len(response.Blocks))
}

func printBlocks(response protocol.Response) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Block", "Status", "Payload", "Block hash", "Total hash"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, block := range response.Blocks {
		table.Append([]string{
			fmt.Sprintf("%d/%d", block.BlockIndex+1, block.BlockCount),
			block.Status.String(),
			strconv.FormatUint(uint64(block.PayloadLength), 10),
			block.BlockHash.String()[:16],
			block.TotalHash.String()[:16],
		})
	}
	table.Render()
}

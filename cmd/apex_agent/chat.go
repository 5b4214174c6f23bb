package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/hmhhmm/apex-insurance/internal/types"
)

var (
	chatMessage  string
	chatContext  string
	chatNoStream bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask the assistant a question",
	Long: `Sends one message to the chat assistant and prints the reply. Without an API key the fixed fallback reply is printed.

The message comes from --message or the positional arguments. --context names a JSON object file passed to the
assistant as page context, e.g. the plan the user is looking at.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		req := types.ChatRequest{Message: chatMessage}
		if req.Message == "" {
			req.Message = strings.Join(args, " ")
		}
		if strings.TrimSpace(req.Message) == "" {
			return eris.New("a message is required (--message or arguments)")
		}
		if chatContext != "" {
			pageContext, err := readChatContext(chatContext)
			if err != nil {
				return err
			}
			req.Context = pageContext
		}

		svc, err := buildServices(ctx, cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		out := cmd.OutOrStdout()
		if chatNoStream {
			resp, err := svc.Assistant.Reply(ctx, req)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, resp.Reply)
			return err
		}

		_, err = svc.Assistant.Stream(ctx, req, func(chunk string) error {
			_, werr := fmt.Fprint(out, chunk)
			return werr
		})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out)
		return err
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Message to send")
	chatCmd.Flags().StringVar(&chatContext, "context", "", "Path to a JSON object file with page context")
	chatCmd.Flags().BoolVar(&chatNoStream, "no-stream", false, "Print the reply once it is complete")
	rootCmd.AddCommand(chatCmd)
}

func readChatContext(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read context file %s", path)
	}
	var pageContext map[string]any
	if err := json.Unmarshal(data, &pageContext); err != nil {
		return nil, eris.Wrapf(err, "context file %s must hold a JSON object", path)
	}
	return pageContext, nil
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/courtbook/toastpop/internal/errors"
	"github.com/courtbook/toastpop/pkg/toast"
	"github.com/courtbook/toastpop/pkg/web"
	"github.com/spf13/cobra"
)

type sendOptions struct {
	server  string
	title   string
	message string
	kind    string
	session string
	timeout time.Duration
}

func sendCmd() *cobra.Command {
	var opts sendOptions

	cmd := &cobra.Command{
		Use:   "send [title] [message]",
		Short: "Show a toast on connected pages",
		Long: `Send a toast to a running toastpop server.

Without --session the toast is shown on every connected page.

Examples:
  toastpop send "Saved" "Your booking is confirmed"
  toastpop send --kind=error "Failed" "That court is already taken"
  toastpop send --session=01J0... "Hello" "Just you"`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.title = args[0]
			}
			if len(args) > 1 {
				opts.message = args[1]
			}
			resp, err := runSend(cmd.Context(), opts)
			if err != nil {
				return err
			}
			success("Toast queued on %d page(s)", resp.Sessions)
			if resp.Sessions == 0 {
				info("No connected page has a toast overlay; nothing was shown.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "http://localhost:8080", "toastpop server URL")
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "Toast title")
	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "Toast message")
	cmd.Flags().StringVarP(&opts.kind, "kind", "k", string(toast.KindSuccess), "Toast kind: success or error")
	cmd.Flags().StringVar(&opts.session, "session", "", "Target a single session id")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "Request timeout")

	return cmd
}

func runSend(ctx context.Context, opts sendOptions) (*web.ToastResponse, error) {
	switch toast.Kind(opts.kind) {
	case toast.KindSuccess, toast.KindError:
	default:
		return nil, errors.New("E203").WithSuggestion(fmt.Sprintf("got %q", opts.kind))
	}

	body, err := json.Marshal(web.ToastRequest{
		Title:     opts.title,
		Message:   opts.message,
		ToastType: opts.kind,
		Session:   opts.session,
	})
	if err != nil {
		return nil, err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	endpoint := strings.TrimSuffix(opts.server, "/") + "/api/toast"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.New("E202").WithDetail("Invalid server URL " + opts.server).Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.New("E202").
			WithSuggestion("Start the server with: toastpop serve").
			Wrap(err)
	}
	defer httpResp.Body.Close()

	var resp web.ToastResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, errors.New("E201").
			WithDetail(fmt.Sprintf("Unexpected response (HTTP %d)", httpResp.StatusCode)).
			Wrap(err)
	}
	if httpResp.StatusCode != http.StatusAccepted {
		return nil, errors.New("E201").
			WithDetail(fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode, resp.Message))
	}
	return &resp, nil
}

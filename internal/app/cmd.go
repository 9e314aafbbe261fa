package app

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
	// CommandFixtures は初期データの検証と一覧出力を行うことを示す。
	CommandFixtures Command = "fixtures"
)

// NewRootCommand はサブコマンドを登録したルートコマンドを返す。
// サブコマンドを省略した場合はserveとして動作する。
// ログはwに出力し、fixturesの一覧はコマンドの標準出力に書き込む。
func NewRootCommand(w io.Writer) *cobra.Command {
	serve := func(cmd *cobra.Command, args []string) error {
		cfg, err := Init(w)
		if err != nil {
			return err
		}
		slog.Info("starting application",
			slog.String("command", string(CommandServe)),
			slog.String("port", cfg.ServerPort),
			slog.String("base_url", cfg.BaseURL),
		)
		return runServe(cmd.Context(), cfg)
	}

	root := &cobra.Command{
		Use:           "memotodo",
		Short:         "Memo/ToDo API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          serve,
	}

	root.AddCommand(&cobra.Command{
		Use:   string(CommandServe),
		Short: "Start the API server",
		Args:  cobra.NoArgs,
		RunE:  serve,
	})

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	root.AddCommand(&cobra.Command{
		Use:   string(CommandHealthcheck),
		Short: "Probe /health on the local server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			port := os.Getenv("SERVER_PORT")
			if port == "" {
				port = "8080"
			}
			return runHealthcheck(port)
		},
	})

	var (
		fixturePath string
		authorID    string
	)
	fixtures := &cobra.Command{
		Use:   string(CommandFixtures),
		Short: "Validate and list the stub post fixtures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fixturePath == "" {
				fixturePath = os.Getenv("POSTS_FIXTURE_PATH")
			}
			return runFixtures(cmd.OutOrStdout(), fixturePath, authorID)
		},
	}
	fixtures.Flags().StringVar(&fixturePath, "file", "", "fixture YAML path (defaults to POSTS_FIXTURE_PATH or the embedded set)")
	fixtures.Flags().StringVar(&authorID, "author", "stub-user-1", "author ID assigned to fixture posts")
	root.AddCommand(fixtures)

	return root
}

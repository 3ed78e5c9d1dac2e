package cmd

import (
	"net/http"

	"github.com/jsphweid/harmonseq/db"
	"github.com/jsphweid/harmonseq/midi"
	"github.com/jsphweid/harmonseq/server"
	"github.com/jsphweid/harmonseq/session"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveOpen []string

func init() {
	serveCmd.Flags().StringSliceVar(&serveOpen, "open", nil, "midi files to host as sessions at startup")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the HTTP API",
	Long:  `Serves the HTTP API used by the browser UI`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func openStore() (db.Store, error) {
	if !cfg.Dynamo.Enabled() {
		return db.NewMemoryStore(), nil
	}
	logrus.WithFields(logrus.Fields{"table": cfg.Dynamo.Table, "endpoint": cfg.Dynamo.Endpoint}).Info("using DynamoDB progressions")
	return db.NewDynamoStore(cfg.Dynamo)
}

func serve() error {
	store, err := openStore()
	if err != nil {
		return err
	}
	sessions := session.NewManager(session.OptionsFromConfig(cfg))
	for _, path := range serveOpen {
		song, err := midi.ReadSong(path, cfg.UndoDepth)
		if err != nil {
			return err
		}
		s := sessions.Open(song)
		logrus.WithFields(logrus.Fields{"file": path, "session": s.ID}).Info("opened")
	}

	srv := server.New(sessions, store)
	logrus.WithField("listen", cfg.Listen).Info("serving")
	return http.ListenAndServe(cfg.Listen, srv.Handler(cfg.AllowedOrigins))
}

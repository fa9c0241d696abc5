package main

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/prodmap/assist/internal/model"
	"github.com/prodmap/assist/internal/pipeline"
)

var (
	batchProductID string
	batchOutput    string
)

// batchResult is one NDJSON line of the batch output.
type batchResult struct {
	Line     int                 `json:"line"`
	Message  string              `json:"message"`
	Entities []model.EntityDraft `json:"entities,omitempty"`
	Reply    string              `json:"reply,omitempty"`
	Error    string              `json:"error,omitempty"`
}

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Extract entity drafts from a file of messages, one per line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrap(err, "batch: open input")
		}
		defer f.Close()

		out := os.Stdout
		if batchOutput != "" {
			out, err = os.Create(batchOutput)
			if err != nil {
				return eris.Wrap(err, "batch: create output")
			}
			defer out.Close()
		}

		var mu sync.Mutex
		enc := json.NewEncoder(out)

		concurrency := cfg.Batch.Concurrency
		if concurrency <= 0 {
			concurrency = 4
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(concurrency)

		scanner := bufio.NewScanner(f)
		line := 0
		for scanner.Scan() {
			line++
			msg := strings.TrimSpace(scanner.Text())
			if msg == "" {
				continue
			}

			n, m := line, msg
			g.Go(func() error {
				res := batchResult{Line: n, Message: m}

				resp, err := env.Pipeline.ExtractEntities(ctx, pipeline.ChatRequest{
					Message:   m,
					ProductID: batchProductID,
				})
				if err != nil {
					// Record the failure and keep going; one bad line
					// should not abort the batch.
					zap.L().Warn("batch line failed", zap.Int("line", n), zap.Error(err))
					res.Error = err.Error()
				} else {
					res.Entities = resp.Entities
					res.Reply = resp.Message
				}

				mu.Lock()
				defer mu.Unlock()
				return enc.Encode(res)
			})
		}
		if err := scanner.Err(); err != nil {
			return eris.Wrap(err, "batch: read input")
		}

		return g.Wait()
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchProductID, "product", "", "product ID for context grounding")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(batchCmd)
}

// Command sypht uploads a document to the Sypht API and prints the
// extracted field values as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sypht-team/sypht-go-client/pkg/client"
	"github.com/sypht-team/sypht-go-client/pkg/logging"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 1 || args[0] != "extract" {
		return fmt.Errorf("usage: sypht extract -product <FIELDSET> [-product ...] <PATH>")
	}

	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	var products stringList
	fs.Var(&products, "product", "one or more products (repeatable)")
	logLevel := fs.String("log-level", getEnv("SYPHT_LOG_LEVEL", "warn"), "log level (debug, info, warn, error)")
	wait := fs.Duration("wait", 3*time.Minute, "how long to poll for results")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if len(products) == 0 {
		return fmt.Errorf("at least one -product is required")
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("exactly one document path is required")
	}
	path := fs.Arg(0)

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(*logLevel),
		Pretty: true,
		Output: os.Stderr,
	})

	c, err := client.New(client.DefaultConfig())
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *wait)
	defer cancel()

	fmt.Fprintln(os.Stderr, "Uploading:", path, "...")
	fileID, err := c.Upload(ctx, file, products, nil)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "Processing:", fileID, "...")
	for {
		fields, done, err := c.FetchResults(ctx, fileID, &client.ResultsOptions{
			Timeout: 30 * time.Second,
		})
		if err != nil {
			return err
		}
		if !done {
			logger.Debug().Str("file_id", fileID).Msg("Results not ready, polling again")
			continue
		}

		out, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
}

// stringList collects repeated flag values.
type stringList []string

func (s *stringList) String() string {
	return fmt.Sprint([]string(*s))
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

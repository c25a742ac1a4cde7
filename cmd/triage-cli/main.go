package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/supportops/feedback-triage/internal/core"
	"github.com/supportops/feedback-triage/internal/di"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(func(logger *zap.Logger) error {
		defer logger.Sync()
		return runTriage(container, flags, logger)
	}); err != nil {
		fmt.Printf("Failed to run: %v\n", err)
		os.Exit(1)
	}
}

func runTriage(container *dig.Container, flags *di.CLIFlags, logger *zap.Logger) error {
	msg, err := readMessage(flags, logger)
	if err != nil {
		return err
	}

	artifact := core.BuildArtifact(msg)

	fmt.Printf("\n=== Message ===\n")
	fmt.Printf("From: %s\n", msg.From)
	fmt.Printf("Subject: %s\n", msg.Subject)
	fmt.Printf("Body length: %d bytes\n", len(msg.BodyText))

	fmt.Printf("\n=== Triage ===\n")
	fmt.Printf("Classification: %s\n", artifact.Classification)
	fmt.Printf("Priority: %s\n", artifact.Priority)
	fmt.Printf("Summary: %s\n", artifact.Ticket.Summary)
	fmt.Printf("Labels: %s\n", strings.Join(artifact.Ticket.Labels, ", "))

	if !flags.UseAI {
		return nil
	}

	return container.Invoke(func(triager core.Triager) error {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		startTime := time.Now()
		verdict, err := triager.ClassifyMessage(ctx, msg)
		if err != nil {
			return fmt.Errorf("classifying message: %w", err)
		}

		fmt.Printf("\n=== AI ===\n")
		fmt.Printf("Decision: %s\n", verdict.Decision)
		fmt.Printf("Confidence: %s\n", verdict.Confidence)
		fmt.Printf("Reason: %s\n", verdict.Reason)
		fmt.Printf("Signals: %s\n", strings.Join(verdict.Signals, "; "))
		fmt.Printf("Processing time: %v\n", time.Since(startTime))
		return nil
	})
}

func readMessage(flags *di.CLIFlags, logger *zap.Logger) (*core.MessageRecord, error) {
	var reader io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return nil, fmt.Errorf("opening input file: %w", err)
		}
		defer file.Close()
		reader = file
		logger.Info("Reading message from file", zap.String("file", flags.InputFile))
	} else {
		reader = os.Stdin
		logger.Info("Reading message from stdin")
	}

	if flags.MailFormat {
		return readMailMessage(reader)
	}
	return readJSONMessage(reader)
}

// readJSONMessage decodes a stored email document, tolerating the known
// schema variants.
func readJSONMessage(r io.Reader) (*core.MessageRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing message document: %w", err)
	}
	return core.DecodeMessage(doc), nil
}

// readMailMessage parses a raw RFC 5322 message.
func readMailMessage(r io.Reader) (*core.MessageRecord, error) {
	msg, err := mail.ReadMessage(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("parsing mail message: %w", err)
	}
	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil, fmt.Errorf("reading mail body: %w", err)
	}
	return &core.MessageRecord{
		ID:       strings.Trim(msg.Header.Get("Message-Id"), "<> "),
		Subject:  msg.Header.Get("Subject"),
		From:     msg.Header.Get("From"),
		Date:     msg.Header.Get("Date"),
		BodyText: string(body),
		Snippet:  core.Snippet(string(body), 200),
	}, nil
}

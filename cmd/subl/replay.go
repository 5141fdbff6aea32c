package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/reusee/sublingual/extracts"
	"github.com/reusee/sublingual/records"
)

func openIndex(ctx context.Context, path records.IndexPath) *records.Index {
	index, err := records.OpenIndex(ctx, string(path))
	ce(err)
	return index
}

func indexAction(logFile string) any {
	return func(
		indexPath records.IndexPath,
	) {
		ctx := context.Background()
		index := openIndex(ctx, indexPath)
		defer index.Close()
		n, err := index.Import(ctx, logFile)
		ce(err)
		fmt.Printf("imported %d records into %s\n", n, indexPath)
	}
}

func recentAction(n int) any {
	if n <= 0 {
		n = 20
	}
	return func(
		indexPath records.IndexPath,
	) {
		ctx := context.Background()
		index := openIndex(ctx, indexPath)
		defer index.Close()
		recs, err := index.Recent(ctx, n)
		ce(err)
		for _, record := range recs {
			fmt.Printf("%s\t%s\t%s:%d\t%s\n",
				record.RequestID,
				record.Time.Format("2006-01-02 15:04:05"),
				record.File,
				record.Line,
				record.Function,
			)
		}
	}
}

func replayAction(id string, messageIndex int, final string) any {
	return func(
		indexPath records.IndexPath,
	) {
		requestID, err := uuid.Parse(id)
		ce(err)

		ctx := context.Background()
		index := openIndex(ctx, indexPath)
		defer index.Close()
		record, err := index.Get(ctx, requestID)
		ce(err)

		projection, err := record.Projection()
		ce(err)
		content, ok := projection.Content(messageIndex)
		if !ok {
			ce(fmt.Errorf("no grammar for message %d of %s", messageIndex, id))
		}

		bs, err := json.MarshalIndent(extracts.ExtractGrammar(content, final), "", "  ")
		ce(err)
		_, err = fmt.Fprintf(os.Stdout, "%s\n", bs)
		ce(err)
	}
}

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/fulldump/box"

	"github.com/nvdnkpr/hr/collection"
)

// insertItems accepts a stream of JSON records and appends them to the feed.
func insertItems(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	s := GetServicer(ctx)
	feedName := box.GetUrlParameter(ctx, "feedName")
	feed, err := s.GetFeed(feedName)
	if err != nil {
		return err
	}

	jsonReader := json.NewDecoder(r.Body)

	inserted := 0
	for {
		item := map[string]any{}
		err := jsonReader.Decode(&item)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		err = feed.Put(item)
		if err != nil {
			return err
		}
		inserted++
	}

	if inserted == 0 {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}

	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(map[string]any{
		"inserted": inserted,
	})
}

// listItems serves one page envelope: {list, n}.
func listItems(ctx context.Context, r *http.Request) (*collection.Page, error) {

	s := GetServicer(ctx)
	feedName := box.GetUrlParameter(ctx, "feedName")
	feed, err := s.GetFeed(feedName)
	if err != nil {
		return nil, err
	}

	result, err := feed.Load(&collection.LoadRequest{
		Start: queryInt(r, "start", 0),
		Limit: queryInt(r, "limit", 10),
	})
	if err != nil {
		return nil, err
	}

	return result.(*collection.Page), nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return fallback
	}

	return n
}

package api

import (
	"context"
	"net/http"

	"github.com/fulldump/box"

	"github.com/nvdnkpr/hr/service"
)

type createFeedRequest struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

func createFeed(ctx context.Context, w http.ResponseWriter, input *createFeedRequest) (*service.Feed, error) {

	s := GetServicer(ctx)

	feed, err := s.CreateFeed(input.Name, input.Fields)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return &service.Feed{
		Name:  input.Name,
		Total: feed.Len(),
	}, nil
}

func listFeeds(ctx context.Context) ([]*service.Feed, error) {

	s := GetServicer(ctx)

	return s.ListFeeds(), nil
}

func getFeed(ctx context.Context) (*service.Feed, error) {

	s := GetServicer(ctx)
	feedName := box.GetUrlParameter(ctx, "feedName")

	feed, err := s.GetFeed(feedName)
	if err != nil {
		return nil, err
	}

	return &service.Feed{
		Name:  feedName,
		Total: feed.Len(),
	}, nil
}

func deleteFeed(ctx context.Context, w http.ResponseWriter) error {

	s := GetServicer(ctx)
	feedName := box.GetUrlParameter(ctx, "feedName")

	err := s.DeleteFeed(feedName)
	if err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

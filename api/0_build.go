package api

import (
	"context"

	"github.com/fulldump/box"

	"github.com/nvdnkpr/hr/service"
)

func Build(s service.Servicer, version string) *box.B {

	b := box.NewBox()

	v1 := b.Resource("/v1")
	v1.WithInterceptors(
		injectServicer(s),
	)

	v1.Resource("/feeds").
		WithActions(
			box.Get(listFeeds),
			box.Post(createFeed),
		)

	v1.Resource("/feeds/{feedName}").
		WithActions(
			box.Get(getFeed),
			box.Delete(deleteFeed),
		)

	v1.Resource("/feeds/{feedName}/items").
		WithActions(
			box.Get(listItems),
			box.Post(insertItems),
		)

	b.Resource("/release").
		WithActions(box.Get(func() string {
			return version
		}))

	return b
}

func injectServicer(s service.Servicer) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			next(SetServicer(ctx, s))
		}
	}
}

package api

import (
	"net/http"
	"testing"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"

	"github.com/nvdnkpr/hr/service"
)

type JSON = map[string]interface{}

func TestAcceptance(t *testing.T) {

	biff.Alternative("Setup", func(a *biff.A) {

		b := Build(service.NewService(), "test")
		b.WithInterceptors(
			PrettyErrorInterceptor,
			RecoverFromPanic,
		)

		api := apitest.NewWithHandler(b)
		defer api.Destroy()

		apiRequest := func(method, path string) *apitest.Request {
			return api.Request(method, "/v1"+path)
		}

		a.Alternative("Create feed", func(a *biff.A) {
			resp := apiRequest("POST", "/feeds").
				WithBodyJson(JSON{
					"name":   "news",
					"fields": []string{"id"},
				}).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusCreated)
			biff.AssertEqualJson(resp.BodyJson(), JSON{
				"name":  "news",
				"total": 0,
			})

			a.Alternative("Create feed again", func(a *biff.A) {
				resp := apiRequest("POST", "/feeds").
					WithBodyJson(JSON{
						"name": "news",
					}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusConflict)
			})

			a.Alternative("Retrieve feed", func(a *biff.A) {
				resp := apiRequest("GET", "/feeds/news").Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"name":  "news",
					"total": 0,
				})
			})

			a.Alternative("List feeds", func(a *biff.A) {
				resp := apiRequest("GET", "/feeds").Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), []JSON{
					{
						"name":  "news",
						"total": 0,
					},
				})
			})

			a.Alternative("Delete feed", func(a *biff.A) {
				resp := apiRequest("DELETE", "/feeds/news").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusNoContent)

				resp = apiRequest("GET", "/feeds/news").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
			})

			a.Alternative("Insert items", func(a *biff.A) {
				resp := apiRequest("POST", "/feeds/news/items").
					WithBodyString(`{"id": 3, "title": "three"}` + "\n" +
						`{"id": 1, "title": "one"}` + "\n" +
						`{"id": 2, "title": "two"}`).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusCreated)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"inserted": 3,
				})

				a.Alternative("List first page", func(a *biff.A) {
					resp := apiRequest("GET", "/feeds/news/items").
						WithQuery("start", "0").
						WithQuery("limit", "2").Do()

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqualJson(resp.BodyJson(), JSON{
						"list": []JSON{
							{"id": 1, "title": "one"},
							{"id": 2, "title": "two"},
						},
						"n": 3,
					})
				})

				a.Alternative("List last page", func(a *biff.A) {
					resp := apiRequest("GET", "/feeds/news/items").
						WithQuery("start", "2").
						WithQuery("limit", "2").Do()

					biff.AssertEqualJson(resp.BodyJson(), JSON{
						"list": []JSON{
							{"id": 3, "title": "three"},
						},
						"n": 3,
					})
				})
			})

			a.Alternative("Insert empty body", func(a *biff.A) {
				resp := apiRequest("POST", "/feeds/news/items").Do()

				biff.AssertEqual(resp.StatusCode, http.StatusNoContent)
			})
		})

		a.Alternative("Items of unknown feed", func(a *biff.A) {
			resp := apiRequest("GET", "/feeds/nope/items").Do()

			biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
		})

		a.Alternative("Release", func(a *biff.A) {
			resp := api.Request("GET", "/release").Do()

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
		})
	})
}

package source

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	json2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/nvdnkpr/hr/collection"
)

// HTTP loads pages from an endpoint returning a {list, n} envelope for
// GET {BaseURL}?start=<offset>&limit=<page size>.
type HTTP struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTP(baseURL string) *HTTP {
	return &HTTP{
		BaseURL: baseURL,
		Client:  http.DefaultClient,
	}
}

func (s *HTTP) Load(req *collection.LoadRequest) (collection.Result, error) {

	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	query := u.Query()
	query.Set("start", strconv.Itoa(req.Start))
	query.Set("limit", strconv.Itoa(req.Limit))
	u.RawQuery = query.Encode()

	resp, err := s.Client.Get(u.String())
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get page: unexpected status %d", resp.StatusCode)
	}

	page := &collection.Page{}
	err = json2.UnmarshalDecode(jsontext.NewDecoder(resp.Body), page)
	if err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}

	return page, nil
}

// Loader exposes the source as a collection loader.
func (s *HTTP) Loader() collection.Loader {
	return s.Load
}

package querier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"runtime"
	"time"

	"github.com/gammazero/workerpool"

	"github.com/darkclainer/wordmeaning/pkg/meaning"
)

const (
	defaultHost     = "en.wiktionary.org"
	defaultProtocol = "https"
	defaultTimeout  = 20 * time.Second
	wikiPath        = "/wiki/"
)

type Config struct {
	// ExtraHeader specifies what header will be added to each request
	ExtraHeader map[string]string `mapstructure:"extra_header"`
	// Timeout specifies maximum wait time for each lookup
	Timeout time.Duration `mapstructure:"timeout"`
	// Host specifies remote host to which request will be sent
	Host     string `mapstructure:"host"`
	Protocol string `mapstructure:"protocol"`
	// MaxWorkers specifies how many worker parse html content of page
	// Zero value mean that it will be equal to number of logical CPU
	MaxWorkers int `mapstructure:"max_workers"`
}

type Remote struct {
	client *http.Client
	config *Config
	pool   *workerpool.WorkerPool
	p      Parser
}

func NewRemote(client *http.Client, p Parser, config *Config) *Remote {
	if client == nil {
		client = &http.Client{}
	}
	if p == nil {
		p = &HTMLParser{}
	}
	if config.Host == "" {
		config.Host = defaultHost
	}
	if config.Protocol == "" {
		config.Protocol = defaultProtocol
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.MaxWorkers < 1 { // nolint:gomnd // if number not specified
		config.MaxWorkers = runtime.NumCPU()
	}
	return &Remote{
		client: client,
		config: config,
		pool:   workerpool.New(config.MaxWorkers),
		p:      p,
	}
}

// Lookup downloads page of the word and parses it.
// Missing page isn't an error: empty result is returned.
func (q *Remote) Lookup(ctx context.Context, word string) (*meaning.WordResult, error) {
	ctx, cancel := context.WithTimeout(ctx, q.config.Timeout)
	defer cancel()

	pageURL := q.newPageURL(word)
	response, err := q.get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	if response == nil {
		return &meaning.WordResult{}, nil
	}
	defer response.Body.Close()

	var meanings []meaning.Meaning
	// Use pool here, because it's heavy cpu bound task
	q.pool.SubmitWait(func() {
		meanings, err = q.p.ParseMeanings(response.Body)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: can not parse page of %q: %w", ErrUnavailable, word, err)
	}
	result := &meaning.WordResult{Meanings: meanings}
	if len(meanings) != 0 {
		result.AddSource(pageURL)
	}
	return result, nil
}

// Page downloads raw page of the word. Missing page is reported as ErrNotFound.
func (q *Remote) Page(ctx context.Context, word string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, q.config.Timeout)
	defer cancel()

	response, err := q.get(ctx, q.newPageURL(word))
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	if response == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, word)
	}
	defer response.Body.Close()
	page, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: can not read page of %q: %w", ErrUnavailable, word, err)
	}
	return page, nil
}

// get returns nil response without error if page doesn't exist
func (q *Remote) get(ctx context.Context, urlGet string) (*http.Response, error) {
	request, err := q.newRequest(ctx, urlGet)
	if err != nil {
		return nil, fmt.Errorf("can not assemble request: %w", err)
	}
	response, err := q.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to make request: %w", ErrUnavailable, err)
	}
	switch response.StatusCode {
	case http.StatusOK:
		return response, nil
	case http.StatusNotFound:
		response.Body.Close()
		return nil, nil
	default:
		response.Body.Close()
		return nil, fmt.Errorf("%w: unexpected response code: %d", ErrUnavailable, response.StatusCode)
	}
}

func (q *Remote) newPageURL(word string) string {
	pageURL := &url.URL{
		Scheme: q.config.Protocol,
		Host:   q.config.Host,
		Path:   path.Join(wikiPath, word),
	}
	return pageURL.String()
}

func (q *Remote) newRequest(ctx context.Context, urlRequest string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlRequest, nil)
	if err != nil {
		return nil, fmt.Errorf("can not form request: %w", err)
	}
	for key, value := range q.config.ExtraHeader {
		req.Header.Add(key, value)
	}
	return req, nil
}

func (q *Remote) Close(ctx context.Context) error {
	q.client.CloseIdleConnections()
	q.pool.StopWait()
	return nil
}

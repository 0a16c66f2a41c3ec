// Package seed imports products into a running store API over HTTP.
package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/SigNoz/store-api-go/internal/models"
)

// PageSize is the page size used when reading another store API
const PageSize = 100

// dummyProduct is the dummyjson.com product shape
type dummyProduct struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Price              float64  `json:"price"`
	DiscountPercentage *float64 `json:"discountPercentage"`
	Rating             *float64 `json:"rating"`
	Stock              *int     `json:"stock"`
	Brand              *string  `json:"brand"`
	Category           *string  `json:"category"`
	Thumbnail          *string  `json:"thumbnail"`
	Images             []string `json:"images"`
}

func (d dummyProduct) input() models.ProductInput {
	name := d.Title
	if name == "" {
		name = "No title"
	}
	in := models.ProductInput{
		Name:               name,
		Description:        &d.Description,
		Price:              d.Price,
		DiscountPercentage: d.DiscountPercentage,
		Rating:             d.Rating,
		Stock:              d.Stock,
		Brand:              d.Brand,
		Category:           d.Category,
		Thumbnail:          d.Thumbnail,
	}
	if len(d.Images) > 0 {
		images := strings.Join(d.Images, ", ")
		in.Images = &images
	}
	return in
}

// HTTPError is a non-2xx response from the target API
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the source and target APIs
type Client struct {
	http   *http.Client
	target string
}

// NewClient returns a client posting to the store API at target
func NewClient(httpClient *http.Client, target string) *Client {
	return &Client{http: httpClient, target: strings.TrimRight(target, "/")}
}

// FetchDummyJSON reads products from a dummyjson-style endpoint
func (c *Client) FetchDummyJSON(ctx context.Context, url string) ([]models.ProductInput, error) {
	var body struct {
		Products []dummyProduct `json:"products"`
	}
	if err := c.getJSON(ctx, url, &body); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	out := make([]models.ProductInput, 0, len(body.Products))
	for _, p := range body.Products {
		out = append(out, p.input())
	}
	return out, nil
}

// FetchStore pages through GET /products of another store API instance. A
// failing page ends the walk; products read so far are still returned.
func (c *Client) FetchStore(ctx context.Context, baseURL string) ([]models.ProductInput, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	var out []models.ProductInput

	for page := 1; ; page++ {
		url := baseURL + "/products?page=" + strconv.Itoa(page) + "&limit=" + strconv.Itoa(PageSize)
		var body models.ProductPage
		if err := c.getJSON(ctx, url, &body); err != nil {
			if page == 1 {
				return nil, fmt.Errorf("fetch %s: %w", url, err)
			}
			log.Printf("Failed to fetch page %d: %v", page, err)
			break
		}
		if len(body.Products) == 0 {
			break
		}

		for _, p := range body.Products {
			out = append(out, models.ProductInput{
				Name:               p.Name,
				Description:        p.Description,
				Price:              p.Price,
				DiscountPercentage: p.DiscountPercentage,
				Rating:             p.Rating,
				Stock:              p.Stock,
				Brand:              p.Brand,
				Category:           p.Category,
				Thumbnail:          p.Thumbnail,
				Images:             p.Images,
			})
		}
		log.Printf("Fetched %d products from page %d", len(body.Products), page)

		if page >= body.Pages {
			break
		}
	}
	return out, nil
}

// Result summarizes an import
type Result struct {
	Created []models.Product
	Skipped int
}

// Import posts every product to the target. A failed product is logged and
// counted; it never stops the batch.
func (c *Client) Import(ctx context.Context, products []models.ProductInput) Result {
	var res Result
	for _, in := range products {
		var created models.Product
		err := c.postJSON(ctx, c.target+"/products", in, &created)
		if err != nil {
			log.Printf("Skipped product %q: %v", in.Name, err)
			res.Skipped++
			continue
		}
		res.Created = append(res.Created, created)
		log.Printf("Created product #%d: %d - %s", len(res.Created), created.ID, created.Name)
	}
	return res
}

// Favorite marks each product as favorite and returns how many succeeded
func (c *Client) Favorite(ctx context.Context, productIDs []int64) int {
	added := 0
	for _, id := range productIDs {
		url := c.target + "/favorites/" + strconv.FormatInt(id, 10)
		if err := c.postJSON(ctx, url, nil, nil); err != nil {
			log.Printf("Failed to favorite product %d: %v", id, err)
			continue
		}
		added++
	}
	return added
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

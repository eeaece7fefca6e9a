package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pricewatch/internal/adapters/http/api"
	"pricewatch/internal/adapters/repository"
	"pricewatch/internal/app"
	"pricewatch/internal/domain/extract"
	"pricewatch/internal/domain/model"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

type fixedExtractor struct {
	res extract.Result
}

func (e *fixedExtractor) Extract(_ context.Context, _ string) (extract.Result, error) {
	return e.res, nil
}

func newTestServer(store repository.Store) (*httptest.Server, *app.Service) {
	svc := app.New(
		app.WithStore(store),
		app.WithExtractor(&fixedExtractor{res: extract.Result{
			Title:      "Widget",
			TitleFound: true,
			Price:      decimal.RequireFromString("59.99"),
			PriceFound: true,
		}}),
	)
	mux := http.NewServeMux()
	api.NewServer(svc).Register(mux)
	return httptest.NewServer(mux), svc
}

func postProduct(t *testing.T, base, url, target string) *http.Response {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"url": url, "target_price": target})
	resp, err := http.Post(base+"/api/products", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post product: %v", err)
	}
	return resp
}

func TestProductRoutes(t *testing.T) {
	Convey("Given a running API server", t, func() {
		store := repository.NewMemStore()
		ts, svc := newTestServer(store)
		defer ts.Close()

		Convey("When registering a product", func() {
			resp := postProduct(t, ts.URL, "https://www.amazon.com/Fancy-Thing/dp/B08N5WRWNW/ref=sr_1_1", "75.00")
			defer resp.Body.Close()

			Convey("Then it is created under its canonical URL", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusCreated)

				var p model.Product
				So(json.NewDecoder(resp.Body).Decode(&p), ShouldBeNil)
				So(p.URL, ShouldEqual, "https://www.amazon.com/dp/B08N5WRWNW")
				So(p.ID, ShouldBeGreaterThan, 0)
			})

			Convey("And a variant of the same URL conflicts", func() {
				dup := postProduct(t, ts.URL, "https://www.amazon.com/gp/product/B08N5WRWNW?th=1", "75.00")
				defer dup.Body.Close()
				So(dup.StatusCode, ShouldEqual, http.StatusConflict)

				var e struct {
					Code string `json:"code"`
				}
				So(json.NewDecoder(dup.Body).Decode(&e), ShouldBeNil)
				So(e.Code, ShouldEqual, "duplicate_url")
			})
		})

		Convey("When the request body is malformed", func() {
			cases := map[string]map[string]string{
				"missing url":     {"target_price": "10"},
				"bad target":      {"url": "https://www.amazon.com/dp/B000000001", "target_price": "cheap"},
				"negative target": {"url": "https://www.amazon.com/dp/B000000001", "target_price": "-5"},
				"zero target":     {"url": "https://www.amazon.com/dp/B000000001", "target_price": "0"},
			}
			for name, body := range cases {
				raw, _ := json.Marshal(body)
				resp, err := http.Post(ts.URL+"/api/products", "application/json", bytes.NewReader(raw))
				So(err, ShouldBeNil)
				resp.Body.Close()
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				_ = name
			}
		})

		Convey("When listing products after a check ran", func() {
			ctx := context.Background()
			p, err := svc.AddProduct(ctx, "https://www.amazon.com/dp/B000000001", decimal.RequireFromString("100"))
			So(err, ShouldBeNil)
			_, err = svc.RunCheck(ctx, p.ID)
			So(err, ShouldBeNil)

			resp, err := http.Get(ts.URL + "/api/products")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then each product carries its latest observed price", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var summaries []model.ProductSummary
				So(json.NewDecoder(resp.Body).Decode(&summaries), ShouldBeNil)
				So(summaries, ShouldHaveLength, 1)
				So(summaries[0].LatestPrice, ShouldNotBeNil)
				So(summaries[0].LatestPrice.Equal(decimal.RequireFromString("59.99")), ShouldBeTrue)
			})

			Convey("And its history is shaped for charting", func() {
				hist, err := http.Get(fmt.Sprintf("%s/api/products/%d/history", ts.URL, p.ID))
				So(err, ShouldBeNil)
				defer hist.Body.Close()
				So(hist.StatusCode, ShouldEqual, http.StatusOK)

				var h struct {
					ProductID int64    `json:"product_id"`
					Labels    []string `json:"labels"`
					Prices    []string `json:"prices"`
				}
				So(json.NewDecoder(hist.Body).Decode(&h), ShouldBeNil)
				So(h.ProductID, ShouldEqual, p.ID)
				So(h.Labels, ShouldHaveLength, 1)
				So(h.Prices, ShouldResemble, []string{"59.99"})
			})
		})

		Convey("When deleting a product", func() {
			ctx := context.Background()
			p, err := svc.AddProduct(ctx, "https://www.amazon.com/dp/B000000002", decimal.RequireFromString("100"))
			So(err, ShouldBeNil)

			req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/products/%d", ts.URL, p.ID), nil)
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			resp.Body.Close()

			Convey("Then it answers no content and the product is gone", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNoContent)
				_, err := store.GetProduct(ctx, p.ID)
				So(err, ShouldNotBeNil)
			})

			Convey("And a second delete reports not found", func() {
				again, err := http.DefaultClient.Do(req)
				So(err, ShouldBeNil)
				again.Body.Close()
				So(again.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When hitting history for an unknown product", func() {
			resp, err := http.Get(ts.URL + "/api/products/424242/history")
			So(err, ShouldBeNil)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the product id is not numeric", func() {
			resp, err := http.Get(ts.URL + "/api/products/abc/history")
			So(err, ShouldBeNil)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestOperationalRoutes(t *testing.T) {
	Convey("Given a running API server", t, func() {
		ts, svc := newTestServer(repository.NewMemStore())
		defer ts.Close()

		Convey("Then healthz answers ok", func() {
			resp, err := http.Get(ts.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})

		Convey("Then stats reports the tracked product count", func() {
			_, err := svc.AddProduct(context.Background(), "https://www.amazon.com/dp/B000000003", decimal.RequireFromString("10"))
			So(err, ShouldBeNil)

			resp, err := http.Get(ts.URL + "/stats")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var stats app.Stats
			So(json.NewDecoder(resp.Body).Decode(&stats), ShouldBeNil)
			So(stats.TrackedProducts, ShouldEqual, 1)
		})
	})
}

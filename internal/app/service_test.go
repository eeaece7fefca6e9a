package app_test

import (
	"context"
	"errors"
	"testing"

	"pricewatch/internal/adapters/notify"
	"pricewatch/internal/adapters/repository"
	"pricewatch/internal/app"
	"pricewatch/internal/domain/extract"
	"pricewatch/internal/domain/model"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

type stubExtractor struct {
	res   extract.Result
	err   error
	calls int
}

func (e *stubExtractor) Extract(_ context.Context, _ string) (extract.Result, error) {
	e.calls++
	return e.res, e.err
}

type captureNotifier struct {
	payloads []notify.Payload
	err      error
}

func (n *captureNotifier) Deliver(_ context.Context, p notify.Payload) error {
	n.payloads = append(n.payloads, p)
	return n.err
}

func found(title string, price string) extract.Result {
	return extract.Result{
		Title:      title,
		TitleFound: true,
		Price:      decimal.RequireFromString(price),
		PriceFound: true,
	}
}

func TestRunCheck(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service over an in-memory store", t, func() {
		store := repository.NewMemStore()
		extractor := &stubExtractor{}
		notifier := &captureNotifier{}
		svc := app.New(
			app.WithStore(store),
			app.WithExtractor(extractor),
			app.WithNotifier(notifier),
		)

		target := decimal.RequireFromString("100")
		p, err := store.AddProduct(ctx, "https://www.amazon.com/dp/B08N5WRWNW", target)
		So(err, ShouldBeNil)

		Convey("When the product has been deleted before the check runs", func() {
			So(store.DeleteProduct(ctx, p.ID), ShouldBeNil)
			outcome, err := svc.RunCheck(ctx, p.ID)

			Convey("Then the check is a clean no-op", func() {
				So(err, ShouldBeNil)
				So(outcome, ShouldEqual, model.OutcomeSkippedMissing)
				So(extractor.calls, ShouldEqual, 0)
			})
		})

		Convey("When the fetch fails at the transport level", func() {
			extractor.err = extract.ErrTransport
			outcome, err := svc.RunCheck(ctx, p.ID)

			Convey("Then the outcome reports the failure and nothing is written", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, extract.ErrTransport), ShouldBeTrue)
				So(outcome, ShouldEqual, model.OutcomeTransportFailed)

				obs, err := store.ListObservations(ctx, p.ID)
				So(err, ShouldBeNil)
				So(obs, ShouldBeEmpty)
			})
		})

		Convey("When no price locator matched", func() {
			extractor.res = extract.Result{Title: "Widget", TitleFound: true}
			outcome, err := svc.RunCheck(ctx, p.ID)

			Convey("Then the ledger is untouched", func() {
				So(err, ShouldBeNil)
				So(outcome, ShouldEqual, model.OutcomeSkippedNoPrice)

				obs, err := store.ListObservations(ctx, p.ID)
				So(err, ShouldBeNil)
				So(obs, ShouldBeEmpty)
			})

			Convey("But the title was still backfilled", func() {
				got, err := store.GetProduct(ctx, p.ID)
				So(err, ShouldBeNil)
				So(got.Title, ShouldEqual, "Widget")
			})
		})

		Convey("When the observed price is at or above the target", func() {
			extractor.res = found("Widget", "100")
			outcome, err := svc.RunCheck(ctx, p.ID)

			Convey("Then an observation is recorded without an alert", func() {
				So(err, ShouldBeNil)
				So(outcome, ShouldEqual, model.OutcomeObserved)

				obs, err := store.ListObservations(ctx, p.ID)
				So(err, ShouldBeNil)
				So(obs, ShouldHaveLength, 1)
				So(obs[0].Price.Equal(decimal.RequireFromString("100")), ShouldBeTrue)
				So(notifier.payloads, ShouldBeEmpty)
			})
		})

		Convey("When the observed price is strictly below the target", func() {
			extractor.res = found("Widget", "79.99")
			outcome, err := svc.RunCheck(ctx, p.ID)

			Convey("Then an alert is delivered with the composed payload", func() {
				So(err, ShouldBeNil)
				So(outcome, ShouldEqual, model.OutcomeAlerted)
				So(notifier.payloads, ShouldHaveLength, 1)
				So(notifier.payloads[0].Title, ShouldEqual, "Widget")
				So(notifier.payloads[0].URL, ShouldEqual, p.URL)
				So(notifier.payloads[0].Observed.Equal(decimal.RequireFromString("79.99")), ShouldBeTrue)
				So(notifier.payloads[0].Target.Equal(target), ShouldBeTrue)
			})
		})

		Convey("When alert delivery fails", func() {
			extractor.res = found("Widget", "50")
			notifier.err = errors.New("smtp down")
			outcome, err := svc.RunCheck(ctx, p.ID)

			Convey("Then the observation survives and the outcome still reports the alert", func() {
				So(err, ShouldBeNil)
				So(outcome, ShouldEqual, model.OutcomeAlerted)

				obs, err := store.ListObservations(ctx, p.ID)
				So(err, ShouldBeNil)
				So(obs, ShouldHaveLength, 1)
			})
		})

		Convey("When the same check runs twice", func() {
			extractor.res = found("Widget", "120")
			_, err := svc.RunCheck(ctx, p.ID)
			So(err, ShouldBeNil)
			_, err = svc.RunCheck(ctx, p.ID)
			So(err, ShouldBeNil)

			Convey("Then two independent observations are appended", func() {
				obs, err := store.ListObservations(ctx, p.ID)
				So(err, ShouldBeNil)
				So(obs, ShouldHaveLength, 2)
				So(obs[0].Price.Equal(obs[1].Price), ShouldBeTrue)
			})
		})

		Convey("When the stored title is already set", func() {
			So(store.UpdateTitle(ctx, p.ID, "Original Name"), ShouldBeNil)
			extractor.res = found("New Name", "120")
			_, err := svc.RunCheck(ctx, p.ID)
			So(err, ShouldBeNil)

			Convey("Then it is not overwritten", func() {
				got, err := store.GetProduct(ctx, p.ID)
				So(err, ShouldBeNil)
				So(got.Title, ShouldEqual, "Original Name")
			})
		})
	})
}

func TestServiceCatalog(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fresh service", t, func() {
		store := repository.NewMemStore()
		extractor := &stubExtractor{res: found("Widget", "89.99")}
		svc := app.New(
			app.WithStore(store),
			app.WithExtractor(extractor),
		)
		target := decimal.RequireFromString("75")

		Convey("When adding a product with a decorated URL", func() {
			p, err := svc.AddProduct(ctx, "https://www.amazon.com/Some-Product-Name/dp/B08N5WRWNW/ref=sr_1_1?keywords=x", target)

			Convey("Then it is stored under the canonical form", func() {
				So(err, ShouldBeNil)
				So(p.URL, ShouldEqual, "https://www.amazon.com/dp/B08N5WRWNW")
			})

			Convey("And a variant of the same URL is rejected as a duplicate", func() {
				_, err := svc.AddProduct(ctx, "https://www.amazon.com/gp/product/B08N5WRWNW?th=1", target)
				So(errors.Is(err, repository.ErrDuplicateURL), ShouldBeTrue)
			})

			Convey("And an immediate check was queued", func() {
				stats, err := svc.Stats(ctx)
				So(err, ShouldBeNil)
				So(stats.QueueLength, ShouldEqual, 1)
				So(stats.TrackedProducts, ShouldEqual, 1)
			})
		})

		Convey("When listing products with history", func() {
			p, err := svc.AddProduct(ctx, "https://www.amazon.com/dp/B000000001", target)
			So(err, ShouldBeNil)
			_, err = svc.RunCheck(ctx, p.ID)
			So(err, ShouldBeNil)

			summaries, err := svc.Products(ctx)

			Convey("Then the latest observed price rides along", func() {
				So(err, ShouldBeNil)
				So(summaries, ShouldHaveLength, 1)
				So(summaries[0].LatestPrice, ShouldNotBeNil)
				So(summaries[0].LatestPrice.Equal(decimal.RequireFromString("89.99")), ShouldBeTrue)
			})

			Convey("And history returns the observations", func() {
				obs, err := svc.History(ctx, p.ID)
				So(err, ShouldBeNil)
				So(obs, ShouldHaveLength, 1)
			})

			Convey("And history for an unknown product reports not found", func() {
				_, err := svc.History(ctx, 424242)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When removing a product", func() {
			p, err := svc.AddProduct(ctx, "https://www.amazon.com/dp/B000000002", target)
			So(err, ShouldBeNil)

			So(svc.RemoveProduct(ctx, p.ID), ShouldBeNil)

			Convey("Then it no longer appears in listings", func() {
				summaries, err := svc.Products(ctx)
				So(err, ShouldBeNil)
				So(summaries, ShouldBeEmpty)
			})

			Convey("And removing it again reports not found", func() {
				So(errors.Is(svc.RemoveProduct(ctx, p.ID), repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

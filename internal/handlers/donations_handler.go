package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/helporphan/donations-api/internal/aws"
	"github.com/helporphan/donations-api/internal/commitment"
	"github.com/helporphan/donations-api/internal/donations"
	"github.com/helporphan/donations-api/internal/validation"
	"github.com/helporphan/donations-api/internal/wishlist"
)

// RegisterDonationRoutes wires the donor-facing surface: committing to an
// item and the public donor wall.
func RegisterDonationRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	donationStore := donations.NewStore(cfg.DynamoDBClient, cfg.DonationsTable)
	wishlistStore := wishlist.NewStore(cfg.DynamoDBClient, cfg.WishlistTable)

	wf := &commitment.Workflow{
		Donations:         donationStore,
		Wishlist:          wishlistStore,
		Notifier:          aws.NewPublisher(cfg.SQSClient, cfg.QueueURL),
		Metrics:           aws.NewMetrics(cfg.CloudWatchClient, cfg.MetricsNamespace),
		StrictFulfillment: cfg.StrictFulfillment,
	}

	r.POST("/donations", func(c *gin.Context) {
		var req validation.CommitRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		res, err := wf.Commit(c.Request.Context(), commitment.CommitRequest{
			ItemID:        req.ItemID,
			DonorName:     req.DonorName,
			ContactEmail:  req.ContactEmail,
			ItemCommitted: req.ItemCommitted,
		})
		if err != nil {
			// the donation-log write failed: hard failure, nothing persisted
			c.JSON(http.StatusInternalServerError, gin.H{"error": "commit_failed", "detail": err.Error()})
			return
		}

		body := gin.H{
			"success":  true,
			"donation": res.Donation,
		}
		if res.Outcome == commitment.OutcomePartial {
			// the log entry stands but the item patch did not land; callers
			// can tell this apart from full success, the donor UX treats
			// both as success
			body["partial"] = true
			body["reason"] = string(res.Reason)
		} else {
			body["item"] = res.Item
		}
		c.JSON(http.StatusCreated, body)
	})

	r.GET("/donors", func(c *gin.Context) {
		recs, err := donationStore.ListByRecency(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "donors": recs})
	})
}

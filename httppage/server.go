package httppage

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/lazyseq/encryption"
	apperrors "github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/lazy"
	"github.com/kbukum/lazyseq/logger"
)

// HandlerOption configures Handler.
type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	defaultLimit int
	maxLimit     int
	codec        *encryption.PageTokenCodec
	log          *logger.Logger
}

// WithDefaultLimit sets the page size used when limit is absent.
func WithDefaultLimit(n int) HandlerOption {
	return func(o *handlerOptions) { o.defaultLimit = n }
}

// WithMaxLimit caps the page size a caller may request. Larger limits are
// rejected rather than clamped, since a page shorter than the requested
// limit tells the caller the collection has ended.
func WithMaxLimit(n int) HandlerOption {
	return func(o *handlerOptions) { o.maxLimit = n }
}

// WithTokenCodec makes the handler accept only page_token and hand out
// next_page_token on full pages.
func WithTokenCodec(codec *encryption.PageTokenCodec) HandlerOption {
	return func(o *handlerOptions) { o.codec = codec }
}

// WithHandlerLogger logs failed fetches. A nil logger selects the global
// logger.
func WithHandlerLogger(l *logger.Logger) HandlerOption {
	return func(o *handlerOptions) { o.log = logger.OrGlobal(l) }
}

// Handler serves fetch as a page endpoint.
func Handler[T any](fetch lazy.PageFetcher[T], opts ...HandlerOption) gin.HandlerFunc {
	o := handlerOptions{defaultLimit: 50, maxLimit: 1000, log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		limit, page, err := o.parse(c)
		if err != nil {
			writeError(c, err)
			return
		}

		items, err := fetch(c.Request.Context(), limit, page)
		if err != nil {
			fields := logger.MergeWithError(logger.Fields(logger.FieldRequestID, c.GetString(ContextKeyRequestID), logger.FieldPage, page), err)
			o.log.Error("page fetch failed", fields)
			writeError(c, err)
			return
		}
		if items == nil {
			items = []T{}
		}

		resp := PageResponse[T]{Items: items, Page: page}
		if o.codec != nil && len(items) >= limit {
			next, err := o.codec.Encode(page + 1)
			if err != nil {
				writeError(c, err)
				return
			}
			resp.NextPageToken = next
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (o *handlerOptions) parse(c *gin.Context) (limit, page int, err error) {
	limit = o.defaultLimit
	if raw := c.Query(ParamLimit); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return 0, 0, apperrors.InvalidArgument(ParamLimit, "must be a positive integer")
		}
	}
	if o.maxLimit > 0 && limit > o.maxLimit {
		return 0, 0, apperrors.InvalidArgument(ParamLimit, fmt.Sprintf("must not exceed %d", o.maxLimit))
	}

	if o.codec != nil {
		raw := c.Query(ParamPageToken)
		if raw == "" {
			return limit, 0, nil
		}
		page, err = o.codec.Decode(raw)
		if err != nil {
			return 0, 0, apperrors.InvalidArgument(ParamPageToken, "is not a valid page token").WithCause(err)
		}
		return limit, page, nil
	}

	if raw := c.Query(ParamPage); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 0 {
			return 0, 0, apperrors.InvalidArgument(ParamPage, "must be a non-negative integer")
		}
	}
	return limit, page, nil
}

// writeError renders err as an ErrorResponse and aborts the chain.
func writeError(c *gin.Context, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, appErr.ToResponse())
}

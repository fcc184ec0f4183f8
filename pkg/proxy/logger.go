package proxy

import (
	"go.uber.org/zap"

	"github.com/permlabs/dexgate/pkg/dex"
)

// Logger emits one structured trace event per proxied request. Strictly
// read-only: it never touches Context and never fails.
type Logger struct {
	NopMiddleware
	log *zap.SugaredLogger
}

// NewLogger creates the observability middleware.
func NewLogger(log *zap.SugaredLogger) *Logger {
	return &Logger{log: log}
}

func (l *Logger) InitOpenOrders(*Context) error {
	l.log.Infow("proxying_init_open_orders")
	return nil
}

func (l *Logger) NewOrderV3(_ *Context, ix *dex.NewOrderV3) error {
	l.log.Infow("proxying_new_order_v3",
		"side", ix.Side.String(),
		"limit_price", ix.LimitPrice,
		"max_coin_qty", ix.MaxCoinQty,
		"max_native_pc_qty", ix.MaxNativePcQty,
		"order_type", ix.OrderType.String(),
		"client_order_id", ix.ClientOrderID,
		"limit", ix.Limit,
	)
	return nil
}

func (l *Logger) CancelOrderV2(_ *Context, ix *dex.CancelOrderV2) error {
	l.log.Infow("proxying_cancel_order_v2",
		"side", ix.Side.String(),
		"order_id", ix.OrderID.String(),
	)
	return nil
}

func (l *Logger) CancelOrderByClientID(_ *Context, clientID uint64) error {
	l.log.Infow("proxying_cancel_order_by_client_id", "client_order_id", clientID)
	return nil
}

func (l *Logger) SettleFunds(*Context) error {
	l.log.Infow("proxying_settle_funds")
	return nil
}

func (l *Logger) CloseOpenOrders(*Context) error {
	l.log.Infow("proxying_close_open_orders")
	return nil
}

func (l *Logger) Fallback(*Context) error {
	l.log.Infow("proxying_unrecognized_instruction")
	return nil
}

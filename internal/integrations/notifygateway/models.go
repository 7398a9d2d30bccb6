package notifygateway

// deliveryRequest тело запроса к шлюзу доставки
type deliveryRequest struct {
	TenantID  int64  `json:"tenantId"`
	EventCode string `json:"eventCode"`
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	RequestID string `json:"requestId"`
}

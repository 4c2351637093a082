package model

import "time"

// EffectiveTime возвращает createdAt заказа, а для старых записей поле date.
func (o Order) EffectiveTime() time.Time {
	if !o.CreatedAt.IsZero() {
		return o.CreatedAt.Time
	}
	return o.Date.Time
}

// Lines возвращает позиции заказа в нормализованном виде. Для старых
// однотоварных заказов без items позиция собирается из productName и amount.
func (o Order) Lines() []OrderItem {
	if len(o.Items) == 0 {
		name := o.ProductName
		if name == "" {
			name = "N/A"
		}
		return []OrderItem{{
			ProductID: o.ProductID,
			Name:      name,
			Price:     o.Amount,
			Quantity:  1,
		}}
	}

	lines := make([]OrderItem, len(o.Items))
	for i, item := range o.Items {
		if item.Quantity <= 0 {
			item.Quantity = 1
		}
		lines[i] = item
	}
	return lines
}

// GrandTotal возвращает сумму заказа: total или, для старых записей, amount.
func (o Order) GrandTotal() float64 {
	if o.Total != 0 {
		return o.Total
	}
	return o.Amount
}

// CurrentStatus возвращает статус заказа, подставляя pending для пустого значения.
func (o Order) CurrentStatus() OrderStatus {
	if o.Status == "" {
		return OrderStatusPending
	}
	return o.Status
}

// Guest сообщает, оформлен ли заказ без учётной записи.
func (o Order) Guest() bool {
	return o.UserID == ""
}

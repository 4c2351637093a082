// Package model содержит доменные сущности магазина luxedropship.
package model

// Role описывает роль пользователя.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// User представляет зарегистрированного пользователя магазина.
// Поле Password хранит либо bcrypt-хеш, либо пароль в открытом виде для старых записей.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	Password  string    `json:"password,omitempty"`
	Role      Role      `json:"role,omitempty"`
	CreatedAt Timestamp `json:"createdAt,omitzero"`
}

// DisplayName возвращает имя пользователя или его email, если имя не задано.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Product описывает товар каталога.
type Product struct {
	ID            string     `json:"id"`
	Name          string     `json:"name,omitempty"`
	NameEn        string     `json:"nameEn,omitempty"`
	Price         float64    `json:"price"`
	OriginalPrice float64    `json:"originalPrice,omitempty"`
	Stock         int        `json:"stock,omitempty"`
	Category      string     `json:"category,omitempty"`
	Image         string     `json:"image,omitempty"`
	GalleryImages StringList `json:"galleryImages,omitempty"`
	Description   string     `json:"description,omitempty"`
	DescriptionEn string     `json:"descriptionEn,omitempty"`
	Colors        StringList `json:"colors,omitempty"`
	Sizes         StringList `json:"sizes,omitempty"`
	Tags          StringList `json:"tags,omitempty"`
	Keywords      string     `json:"keywords,omitempty"`
	SKU           string     `json:"sku,omitempty"`
	FreeShipping  bool       `json:"freeShipping,omitempty"`
	ShippingFee   float64    `json:"shippingFee,omitempty"`
	DeliveryDays  string     `json:"deliveryDays,omitempty"`
	IsNew         bool       `json:"isNew,omitempty"`
	IsHot         bool       `json:"isHot,omitempty"`
	CouponCode    string     `json:"couponCode,omitempty"`
	Rating        float64    `json:"rating,omitempty"`
	Reviews       int        `json:"reviews,omitempty"`
	CreatedAt     Timestamp  `json:"createdAt,omitzero"`
}

// Title возвращает отображаемое название товара для указанного языка.
func (p Product) Title(lang string) string {
	if lang == "en" && p.NameEn != "" {
		return p.NameEn
	}
	if p.Name != "" {
		return p.Name
	}
	return p.NameEn
}

// OrderStatus описывает статус заказа.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid сообщает, является ли статус одним из допустимых значений.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem описывает позицию заказа. Нулевое количество трактуется как 1.
type OrderItem struct {
	ProductID string  `json:"id,omitempty"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity,omitempty"`
	Image     string  `json:"image,omitempty"`
}

// Customer содержит контактные данные гостевого покупателя.
type Customer struct {
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	FullAddress string `json:"fullAddress,omitempty"`
}

// Order описывает заказ. Поля ProductID, ProductName, Amount и Date
// встречаются только в старых однотоварных заказах.
type Order struct {
	ID            string      `json:"id"`
	Items         []OrderItem `json:"items,omitempty"`
	Total         float64     `json:"total,omitempty"`
	Discount      float64     `json:"discount,omitempty"`
	CouponCode    string      `json:"couponCode,omitempty"`
	Currency      string      `json:"currency,omitempty"`
	Status        OrderStatus `json:"status,omitempty"`
	UserID        string      `json:"userId,omitempty"`
	Customer      *Customer   `json:"customer,omitempty"`
	PaymentMethod string      `json:"paymentMethod,omitempty"`
	ProductID     string      `json:"productId,omitempty"`
	ProductName   string      `json:"productName,omitempty"`
	Amount        float64     `json:"amount,omitempty"`
	CreatedAt     Timestamp   `json:"createdAt,omitzero"`
	Date          Timestamp   `json:"date,omitzero"`
}

// CouponType описывает способ расчёта скидки по купону.
type CouponType string

const (
	CouponPercentage CouponType = "percentage"
	CouponFixed      CouponType = "fixed"
)

// CouponStatus описывает сохранённый статус купона.
type CouponStatus string

const (
	CouponActive  CouponStatus = "active"
	CouponExpired CouponStatus = "expired"
)

// Coupon описывает скидочный купон. UsageLimit носит справочный характер:
// погашения купона не учитываются.
type Coupon struct {
	ID          string       `json:"id"`
	Code        string       `json:"code"`
	Type        CouponType   `json:"type"`
	Value       float64      `json:"value"`
	MinPurchase float64      `json:"minPurchase,omitempty"`
	UsageLimit  *int         `json:"usageLimit,omitempty"`
	ExpiryDate  Date         `json:"expiryDate,omitzero"`
	Status      CouponStatus `json:"status,omitempty"`
	CreatedAt   Timestamp    `json:"createdAt,omitzero"`
}

// CartItem описывает запись корзины. Количество товара выражается
// числом одинаковых записей.
type CartItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`
}

// ImportStatus различает импортированные товары и черновики импорта.
type ImportStatus string

const (
	ImportStatusImported ImportStatus = "imported"
	ImportStatusDraft    ImportStatus = "draft"
)

// ImportRecord описывает запись истории импорта товаров с маркетплейса.
// Timestamp хранится строкой ISO 8601 и служит ключом удаления.
type ImportRecord struct {
	ID            string       `json:"id,omitempty"`
	NameEn        string       `json:"nameEn,omitempty"`
	NameVi        string       `json:"nameVi,omitempty"`
	Price         float64      `json:"price,omitempty"`
	OriginalPrice float64      `json:"originalPrice,omitempty"`
	Stock         int          `json:"stock,omitempty"`
	Category      string       `json:"category,omitempty"`
	Image         string       `json:"image,omitempty"`
	Gallery       StringList   `json:"gallery,omitempty"`
	DescriptionEn string       `json:"descriptionEn,omitempty"`
	DescriptionVi string       `json:"descriptionVi,omitempty"`
	Keywords      string       `json:"keywords,omitempty"`
	Tags          string       `json:"tags,omitempty"`
	SourceURL     string       `json:"sourceUrl,omitempty"`
	Timestamp     string       `json:"timestamp"`
	Status        ImportStatus `json:"status"`
}

// Dashboard содержит сводные показатели административной панели.
type Dashboard struct {
	Users    int     `json:"totalUsers"`
	Products int     `json:"totalProducts"`
	Orders   int     `json:"totalOrders"`
	Revenue  float64 `json:"totalRevenue"`
}

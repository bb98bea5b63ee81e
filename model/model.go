package model

import "time"

type ProgramStatus string

const (
	ProgramDraft     ProgramStatus = "draft"
	ProgramPublished ProgramStatus = "published"
)

type Program struct {
	ID        int64         `json:"id" db:"id"`
	Name      string        `json:"name" db:"name"`
	Status    ProgramStatus `json:"status" db:"status"`
	SortOrder int           `json:"sortOrder" db:"sort_order"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
}

type DynamicForm struct {
	ID        int64       `json:"id" db:"id"`
	ProgramID int64       `json:"programId" db:"program_id"`
	Version   int         `json:"version" db:"version"`
	IsActive  bool        `json:"isActive" db:"is_active"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	Fields    []FormField `json:"fields" db:"-"`
}

type FieldType string

const (
	FieldText        FieldType = "text"
	FieldTextarea    FieldType = "textarea"
	FieldNumber      FieldType = "number"
	FieldEmail       FieldType = "email"
	FieldPhone       FieldType = "phone"
	FieldDate        FieldType = "date"
	FieldChoice      FieldType = "choice"
	FieldMultichoice FieldType = "multichoice"
	FieldCheckbox    FieldType = "checkbox"
	FieldFile        FieldType = "file"
)

// HasOptions reports whether answers must be picked from the field's options.
func (t FieldType) HasOptions() bool {
	return t == FieldChoice || t == FieldMultichoice
}

type FormField struct {
	ID       int64     `json:"id"`
	FormID   int64     `json:"formId"`
	Position int       `json:"position"`
	Type     FieldType `json:"type"`
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
}

// FieldSpec is the admin input for one field of a new form.
type FieldSpec struct {
	Type     FieldType `json:"type" validate:"required,oneof=text textarea number email phone date choice multichoice checkbox file"`
	Label    string    `json:"label" validate:"required,max=200"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty" validate:"dive,required"`
}

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

type FormSubmission struct {
	ID        int64             `json:"id" db:"id"`
	FormID    int64             `json:"formId" db:"form_id"`
	Status    SubmissionStatus  `json:"status" db:"status"`
	Period    string            `json:"period" db:"period"`
	CreatedAt time.Time         `json:"createdAt" db:"created_at"`
	Values    []SubmissionValue `json:"values,omitempty" db:"-"`
}

type SubmissionValue struct {
	ID           int64  `json:"id" db:"id"`
	SubmissionID int64  `json:"submissionId" db:"submission_id"`
	FieldID      int64  `json:"fieldId" db:"field_id"`
	Value        string `json:"value" db:"value"`
}

// SubmissionPatch carries the admin-editable parts of a submission.
type SubmissionPatch struct {
	Status *SubmissionStatus `json:"status,omitempty"`
	Period *string           `json:"period,omitempty"`
}

type ProductType string

const (
	ProductPhysical ProductType = "physical"
	ProductVoucher  ProductType = "voucher"
)

type Product struct {
	ID        int64       `json:"id" db:"id"`
	Name      string      `json:"name" db:"name" validate:"required"`
	Type      ProductType `json:"type" db:"type" validate:"required,oneof=physical voucher"`
	Price     int64       `json:"price" db:"price" validate:"gte=0"`
	Stock     int         `json:"stock" db:"stock" validate:"gte=0"`
	IsActive  bool        `json:"isActive" db:"is_active"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
}

type Voucher struct {
	ID        int64      `json:"id" db:"id"`
	ProductID int64      `json:"productId" db:"product_id"`
	Code      string     `json:"code" db:"code"`
	IsUsed    bool       `json:"isUsed" db:"is_used"`
	UsedAt    *time.Time `json:"usedAt,omitempty" db:"used_at"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}

type ProductSummary struct {
	ID   int64       `json:"id"`
	Name string      `json:"name"`
	Type ProductType `json:"type"`
}

// OrderTracking is the public view of an order.
type OrderTracking struct {
	OrderID    int64          `json:"orderId"`
	Status     string         `json:"status"`
	TotalPrice int64          `json:"totalPrice"`
	PaymentURL string         `json:"paymentUrl"`
	CreatedAt  time.Time      `json:"createdAt"`
	Product    ProductSummary `json:"product"`
}

type Winner struct {
	ID        int64  `json:"id" db:"id"`
	ProgramID int64  `json:"programId" db:"program_id"`
	Name      string `json:"name" db:"name"`
	PhotoURL  string `json:"photoUrl" db:"photo_url"`
}

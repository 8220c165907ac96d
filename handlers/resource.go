package handlers

import (
	"context"
	"errors"
	"strings"

	"bitbucket.org/prajapati/wealth_backend/docstore"
	"bitbucket.org/prajapati/wealth_backend/forms"
	"bitbucket.org/prajapati/wealth_backend/middlewares"
	"bitbucket.org/prajapati/wealth_backend/models"
	"bitbucket.org/prajapati/wealth_backend/models/reports"
	"bitbucket.org/prajapati/wealth_backend/utils"
)

// Resource is one collection served under /api/{Name}.
type Resource struct {
	Name string

	// ViewNav guards writes and, unless OpenRead is set, reads too.
	ViewNav  string
	OpenRead bool
	// AdminWrites limits creates, updates and deletes to the admin.
	AdminWrites bool

	Form *forms.Definition
	// CreateForm validates creates when they take other fields than updates.
	CreateForm *forms.Definition

	Sheet     string
	Leading   []string
	Columns   []reports.Column
	Landscape bool

	ops resourceOps
}

func (r *Resource) createForm() *forms.Definition {
	if r.CreateForm != nil {
		return r.CreateForm
	}
	return r.Form
}

type resourceOps interface {
	list(ctx context.Context) ([]docstore.Data, error)
	get(ctx context.Context, id string) (docstore.Data, error)
	raw(ctx context.Context, id string) (docstore.Data, error)
	create(ctx context.Context, fields docstore.Data) (string, error)
	update(ctx context.Context, id string, fields docstore.Data) error
	remove(ctx context.Context, id string) error
	subscribe(ctx context.Context, onChange func([]docstore.Data), onError func(error)) func()
}

// entityOps serves a Repository. The create, update and remove hooks replace
// the plain repository calls for entities with extra rules.
type entityOps[T any] struct {
	repo     func(ctx context.Context) *models.Repository[T]
	clients  models.ClientLookup
	onCreate func(ctx context.Context, fields docstore.Data) (string, error)
	onUpdate func(ctx context.Context, id string, fields docstore.Data) error
	onRemove func(ctx context.Context, id string) error
}

func fixed[T any](repo *models.Repository[T]) func(context.Context) *models.Repository[T] {
	return func(context.Context) *models.Repository[T] { return repo }
}

func (o *entityOps[T]) views(ctx context.Context, lookup models.ClientLookup, records []*T) ([]docstore.Data, error) {
	return models.RecordViews(ctx, lookup, records)
}

func (o *entityOps[T]) list(ctx context.Context) ([]docstore.Data, error) {
	records, err := o.repo(ctx).List(ctx)
	if err != nil {
		return nil, err
	}
	return o.views(ctx, middlewares.ClientLookup(ctx, o.clients), records)
}

func (o *entityOps[T]) get(ctx context.Context, id string) (docstore.Data, error) {
	rec, err := o.repo(ctx).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := o.views(ctx, middlewares.ClientLookup(ctx, o.clients), []*T{rec})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (o *entityOps[T]) raw(ctx context.Context, id string) (docstore.Data, error) {
	doc, err := o.repo(ctx).Document(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}

func (o *entityOps[T]) create(ctx context.Context, fields docstore.Data) (string, error) {
	if o.onCreate != nil {
		return o.onCreate(ctx, fields)
	}
	return o.repo(ctx).CreateFields(ctx, fields)
}

func (o *entityOps[T]) update(ctx context.Context, id string, fields docstore.Data) error {
	if o.onUpdate != nil {
		return o.onUpdate(ctx, id, fields)
	}
	return o.repo(ctx).Update(ctx, id, fields)
}

func (o *entityOps[T]) remove(ctx context.Context, id string) error {
	if o.onRemove != nil {
		return o.onRemove(ctx, id)
	}
	return o.repo(ctx).Remove(ctx, id)
}

// subscribe resolves client names against the store on every snapshot;
// the request's batch loader would cache them for the stream's lifetime.
func (o *entityOps[T]) subscribe(ctx context.Context, onChange func([]docstore.Data), onError func(error)) func() {
	return o.repo(ctx).Subscribe(func(records []*T) {
		views, err := o.views(context.WithoutCancel(ctx), o.clients, records)
		if err != nil {
			onError(err)
			return
		}
		onChange(views)
	}, onError)
}

// mergeFields overlays partial on current one level deep, the way a form
// edit sees the record.
func mergeFields(current, partial docstore.Data) forms.Fields {
	out := forms.Fields{}
	for k, v := range current {
		out[k] = v
	}
	for k, v := range partial {
		out[k] = v
	}
	return out
}

// scopedEmployees limits the employee routes to the signed-in admin's staff.
func scopedEmployees(svc *models.EmployeeService) func(context.Context) *models.Repository[models.Employee] {
	return func(ctx context.Context) *models.Repository[models.Employee] {
		uid, _ := utils.GetUserIdFromContext(ctx)
		return svc.CreatedBy(uid)
	}
}

func newEmployeeInput(fields docstore.Data) models.NewEmployee {
	str := func(k string) string {
		s, _ := fields[k].(string)
		return strings.TrimSpace(s)
	}
	p, _ := models.ParsePermission(str("permission"))
	return models.NewEmployee{
		Name:       str("name"),
		Email:      str("email"),
		Dob:        str("dob"),
		Permission: p,
		Password:   str("password"),
	}
}

var errNoIdentity = errors.New("no signed-in user")

// Resources builds the collection routes served by the API.
func Resources(repos *models.Repositories) []*Resource {
	clients := repos.Clients
	resources := []*Resource{
		{
			Name: "clients", ViewNav: "clients",
			Sheet: "Clients", Leading: []string{"ClientNumber", "Name", "FamilyName"},
			Columns: []reports.Column{
				{Header: "Code", Key: "ClientNumber", Width: 22},
				{Header: "Name", Key: "Name", Width: 40},
				{Header: "Family", Key: "FamilyName", Width: 35},
				{Header: "Mobile", Key: "Number", Width: 30},
				{Header: "Email", Key: "Email", Width: 55},
				{Header: "City", Key: "City", Width: 30},
				{Header: "Location", Key: "Location", Width: 35},
			},
			Landscape: true,
			ops: &entityOps[models.Client]{
				repo:    fixed(clients.Repository),
				clients: clients,
				onCreate: func(ctx context.Context, fields docstore.Data) (string, error) {
					created, err := clients.CreateClient(ctx, fields)
					if err != nil {
						return "", err
					}
					return created.ID, nil
				},
				onUpdate: clients.Update,
				onRemove: clients.Remove,
			},
		},
		{
			Name: "employees", ViewNav: "employees", CreateForm: forms.EmployeeSignupForm,
			AdminWrites: true,
			Sheet: "Employees", Leading: []string{"Name", "Email"},
			Columns: []reports.Column{
				{Header: "Name", Key: "Name", Width: 50},
				{Header: "Email", Key: "Email", Width: 50},
				{Header: "Date of birth", Key: "Dob", Width: 30},
				{Header: "Permission", Key: "Permission", Width: 30},
			},
			ops: &entityOps[models.Employee]{
				repo:    scopedEmployees(repos.Employees),
				clients: clients,
				onCreate: func(ctx context.Context, fields docstore.Data) (string, error) {
					uid, ok := utils.GetUserIdFromContext(ctx)
					if !ok {
						return "", errNoIdentity
					}
					emp, err := repos.Employees.CreateEmployee(ctx, uid, newEmployeeInput(fields))
					if err != nil {
						return "", err
					}
					return emp.ID, nil
				},
				onUpdate: func(ctx context.Context, id string, fields docstore.Data) error {
					uid, _ := utils.GetUserIdFromContext(ctx)
					return repos.Employees.Update(ctx, uid, id, fields)
				},
				onRemove: func(ctx context.Context, id string) error {
					uid, _ := utils.GetUserIdFromContext(ctx)
					return repos.Employees.Remove(ctx, uid, id)
				},
			},
		},
		{
			Name: "executives", ViewNav: "executives",
			Sheet: "Employees", Leading: []string{"Name", "EmployeeId"},
			Columns: []reports.Column{
				{Header: "Name", Key: "Name", Width: 35},
				{Header: "Employee ID", Key: "EmployeeId", Width: 25},
				{Header: "Phone Number", Key: "PhoneNumber", Width: 30},
				{Header: "Email", Key: "Email", Width: 50},
				{Header: "Designation", Key: "Designation", Width: 30},
				{Header: "Leave Left", Key: "LeaveLeft", Width: 20},
				{Header: "Leave Used", Key: "LeaveUsed", Width: 20},
				{Header: "Salary", Key: "Salary", Width: 25},
			},
			Landscape: true,
			ops:       &entityOps[models.Executive]{repo: fixed(repos.Executives), clients: clients},
		},
		{
			Name: "fd-entries", ViewNav: "fd-entries",
			Sheet: "FD Entries", Leading: []string{"Customer1", "Customer2", "Product"},
			Columns: []reports.Column{
				{Header: "Customer 1", Key: "Customer1", Width: 32},
				{Header: "Customer 2", Key: "Customer2", Width: 32},
				{Header: "Product", Key: "Product", Width: 20},
				{Header: "Deposit Date", Key: "DepositDate", Width: 20},
				{Header: "Amount Deposited", Key: "AmountDeposited", Width: 22},
				{Header: "Maturity Date", Key: "MaturityDate", Width: 20},
				{Header: "Interest Rate", Key: "InterestRate", Width: 16},
				{Header: "Nominee 1", Key: "Nominee1", Width: 22},
				{Header: "Cheque Number", Key: "ChequeNumber", Width: 20},
				{Header: "Bank Name", Key: "BankName", Width: 23},
			},
			Landscape: true,
			ops:       &entityOps[models.FdEntry]{repo: fixed(repos.FdEntries), clients: clients},
		},
		{
			Name: "insurances", ViewNav: "insurance",
			Sheet: "Insurance", Leading: []string{"Customer", "Product", "Plan"},
			Columns: []reports.Column{
				{Header: "Customer", Key: "Customer", Width: 40},
				{Header: "Product", Key: "Product", Width: 25},
				{Header: "Plan", Key: "Plan", Width: 25},
				{Header: "Policy Date", Key: "PolicyDate", Width: 22},
				{Header: "Sum Assured", Key: "SumAssured", Width: 25},
				{Header: "Premium Mode", Key: "PremiumMode", Width: 25},
				{Header: "Premium", Key: "PremiumAmount", Width: 22},
				{Header: "Maturity Date", Key: "MaturityDate", Width: 22},
				{Header: "Nominee", Key: "NomineeName", Width: 31},
			},
			Landscape: true,
			ops:       &entityOps[models.Insurance]{repo: fixed(repos.Insurances), clients: clients},
		},
		{
			Name: "mediclaims", ViewNav: "mediclaim",
			Sheet: "Entries", Leading: []string{"PolicyType", "Customer"},
			Columns: []reports.Column{
				{Header: "Type", Key: "PolicyType", Width: 18},
				{Header: "Customer", Key: "Customer", Width: 40},
				{Header: "Company", Key: "PolicyDetails_Company", Width: 35},
				{Header: "Policy Number", Key: "PolicyDetails_PolicyNumber", Width: 30},
				{Header: "Sum Insured", Key: "PolicyDetails_SumInsured", Width: 25},
				{Header: "Start", Key: "PolicyDetails_StartDate", Width: 22},
				{Header: "End", Key: "PolicyDetails_EndDate", Width: 22},
				{Header: "Premium", Key: "PaymentInfo_PremiumAmount", Width: 22},
				{Header: "Mode", Key: "PaymentInfo_PaymentMode", Width: 23},
			},
			Landscape: true,
			ops:       &entityOps[models.Mediclaim]{repo: fixed(repos.Mediclaims), clients: clients},
		},
		{
			Name: "postal-entries", ViewNav: "postal",
			Sheet: "Postal Entries", Leading: []string{"Customer1", "Customer2", "Product"},
			Columns: []reports.Column{
				{Header: "Customer 1", Key: "Customer1", Width: 35},
				{Header: "Customer 2", Key: "Customer2", Width: 35},
				{Header: "Product", Key: "Product", Width: 22},
				{Header: "Sub Product", Key: "SubProduct", Width: 22},
				{Header: "Deposit Date", Key: "DepositDate", Width: 22},
				{Header: "Amount", Key: "Amount", Width: 22},
				{Header: "Maturity Date", Key: "MaturityDate", Width: 22},
				{Header: "Post Office", Key: "PostOfficeName", Width: 27},
				{Header: "Agent Code", Key: "AgentCode", Width: 20},
			},
			Landscape: true,
			ops:       &entityOps[models.PostalEntry]{repo: fixed(repos.PostalEntries), clients: clients},
		},
		{
			Name: "phone-logs", ViewNav: "phone-logs",
			Sheet: "Phone Logs", Leading: []string{"CreatedAt", "EmployeeName"},
			Columns: []reports.Column{
				{Header: "Date", Key: "CreatedAt", Width: 40},
				{Header: "Employee", Key: "EmployeeName", Width: 40},
				{Header: "Phone Number", Key: "PhoneNumber", Width: 35},
				{Header: "Task", Key: "TaskDescription", Width: 122},
			},
			Landscape: true,
			ops:       &entityOps[models.PhoneLog]{repo: fixed(repos.PhoneLogs), clients: clients},
		},
		{
			Name: "cheques", ViewNav: "post-office",
			Sheet: "Cheques", Leading: []string{"DueDate", "RdChequeEntry"},
			Columns: []reports.Column{
				{Header: "RD Cheque Entry", Key: "RdChequeEntry", Width: 40},
				{Header: "Cheque From", Key: "ChequeFrom", Width: 30},
				{Header: "Cheque To", Key: "ChequeTo", Width: 30},
				{Header: "Bank Name", Key: "BankName", Width: 30},
				{Header: "Due Date", Key: "DueDate", Width: 30},
			},
			ops: &entityOps[models.Cheque]{repo: fixed(repos.Cheques), clients: clients},
		},
		{
			Name: "locations", ViewNav: "masters.locations", OpenRead: true,
			Sheet: "Locations", Leading: []string{"Name"},
			Columns: []reports.Column{{Header: "Location", Key: "Name", Width: 160}},
			ops:     &entityOps[models.Location]{repo: fixed(repos.Locations), clients: clients},
		},
		{
			Name: "areas", ViewNav: "masters.locations", OpenRead: true,
			Sheet: "Areas", Leading: []string{"Name"},
			Columns: []reports.Column{{Header: "Area", Key: "Name", Width: 160}},
			ops:     &entityOps[models.Area]{repo: fixed(repos.Areas), clients: clients},
		},
	}
	for _, r := range resources {
		r.Form = forms.ByResource[r.Name]
	}
	return resources
}

package lookup

import (
	"context"
	"errors"
	"reflect"
	"time"

	"crmbridge/crm/pkg/crm"
	"crmbridge/tools/logger"
	"crmbridge/tools/validator"
)

const (
	AppName = "client_lookup"

	// DefaultThrottle 每次按电话查询前的等待，避免触发 CRM 限流
	DefaultThrottle = 500 * time.Millisecond
	// NoThrottle 显式关闭查询间隔
	NoThrottle time.Duration = -1
	// DefaultIINField 存放 IIN 的联系人自定义字段
	DefaultIINField = "UF_CRM_1554290627253"
)

// ContactLister 查询联系人列表，*crm.Client 实现了该接口
type ContactLister interface {
	ListContacts(ctx context.Context, req crm.ListRequest) ([]crm.Record, error)
}

// Options 查询服务配置
type Options struct {
	Contacts ContactLister
	Journal  crm.Journal
	Logger   *logger.Logger
	// Throttle 为 0 时使用 DefaultThrottle，负数表示不等待
	Throttle time.Duration
	IINField string
	// Wait 为空时使用 crm.Sleep
	Wait func(ctx context.Context, d time.Duration) error
}

// Service 按电话和/或 IIN 查找客户
type Service struct {
	contacts ContactLister
	journal  crm.Journal
	logger   *logger.Logger
	throttle time.Duration
	iinField string
	wait     func(ctx context.Context, d time.Duration) error
}

func NewService(opts Options) *Service {
	s := &Service{
		contacts: opts.Contacts,
		journal:  opts.Journal,
		logger:   opts.Logger,
		throttle: opts.Throttle,
		iinField: opts.IINField,
		wait:     opts.Wait,
	}
	switch {
	case s.throttle == 0:
		s.throttle = DefaultThrottle
	case s.throttle < 0:
		s.throttle = 0
	}
	if s.iinField == "" {
		s.iinField = DefaultIINField
	}
	if s.wait == nil {
		s.wait = crm.Sleep
	}
	if s.logger == nil {
		s.logger = logger.NewLogger("info")
	}
	s.logger = s.logger.With(AppName)
	if s.journal == nil {
		s.journal = nopJournal{}
	}
	return s
}

// Init 满足 ioc.Object
func (s *Service) Init() error {
	if s.contacts == nil {
		return errors.New("lookup: contact lister is not set")
	}
	return nil
}

// FindClients 先按电话的三种写法查询，再按 IIN 查询，合并去重后返回。
// 电话不合法时直接返回，不再校验 IIN。
func (s *Service) FindClients(ctx context.Context, phone, iin string) ([]crm.Record, error) {
	if phone == "" && iin == "" {
		err := &ValidationError{Field: "phone/iin", Reason: "phone or IIN is required"}
		s.journal.Logf(logger.CategoryError, "client lookup rejected: %v", err)
		return nil, err
	}

	var found []crm.Record

	if phone != "" {
		if !validator.IsValidPhone(phone) {
			err := &ValidationError{Field: "phone", Value: phone, Reason: "expected 10 digits with optional 7 or 8 prefix"}
			s.journal.Logf(logger.CategoryError, "client lookup rejected: %v", err)
			return nil, err
		}

		for _, variant := range validator.FormatPhoneVariants(phone) {
			if err := s.wait(ctx, s.throttle); err != nil {
				return nil, err
			}
			records, err := s.list(ctx, "PHONE", variant)
			if err != nil {
				return nil, err
			}
			found = append(found, records...)
		}
	}

	if iin != "" {
		if !validator.IsValidIIN(iin) {
			err := &ValidationError{Field: "iin", Value: iin, Reason: "expected 12 digits"}
			s.journal.Logf(logger.CategoryError, "client lookup rejected: %v", err)
			return nil, err
		}

		records, err := s.list(ctx, s.iinField, iin)
		if err != nil {
			return nil, err
		}
		found = append(found, records...)
	}

	clients := Dedupe(found)
	digits := validator.DigitsOnly(phone)
	if len(clients) == 0 {
		s.journal.Logf(logger.CategoryError, "client not found (phone: %s, IIN: %s)", digits, iin)
		return nil, ErrNotFound
	}

	s.journal.Logf(logger.CategorySuccess, "found %d client(s) (phone: %s, IIN: %s)", len(clients), digits, iin)
	return clients, nil
}

// list 软失败（ErrNoResult）视为没有结果
func (s *Service) list(ctx context.Context, field, value string) ([]crm.Record, error) {
	records, err := s.contacts.ListContacts(ctx, crm.ListRequest{
		Filter: map[string]any{field: value},
	})
	if errors.Is(err, crm.ErrNoResult) {
		s.logger.Debug("no contacts for %s=%s", field, value)
		return nil, nil
	}
	return records, err
}

// Dedupe 按整条记录比较去重，保留首次出现的顺序
func Dedupe(records []crm.Record) []crm.Record {
	out := make([]crm.Record, 0, len(records))
	for _, rec := range records {
		seen := false
		for _, kept := range out {
			if reflect.DeepEqual(kept, rec) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, rec)
		}
	}
	return out
}

type nopJournal struct{}

func (nopJournal) Logf(logger.Category, string, ...interface{}) {}

package schedule

// ===============================
// Slot Scope
// ===============================

// A slot is personal, bound to a catalog course, or bound to a
// marketplace order. Duplicate detection only ever compares slots of
// the same scope.
type ScopeKind string

const (
	ScopePersonal ScopeKind = "personal"
	ScopeCourse   ScopeKind = "course"
	ScopeOrder    ScopeKind = "order"
)

type Scope struct {
	Kind     ScopeKind
	CourseID uint
	OrderID  uint
}

func PersonalScope() Scope {
	return Scope{Kind: ScopePersonal}
}

func CourseScope(courseID uint) Scope {
	return Scope{Kind: ScopeCourse, CourseID: courseID}
}

func OrderScope(orderID uint) Scope {
	return Scope{Kind: ScopeOrder, OrderID: orderID}
}

// ScopeFrom maps the nullable column pair onto the variant. A row with
// both ids set is treated as order-bound, matching how order-derived
// slots are written.
func ScopeFrom(courseID, orderID *uint) Scope {
	switch {
	case orderID != nil && *orderID != 0:
		return OrderScope(*orderID)
	case courseID != nil && *courseID != 0:
		return CourseScope(*courseID)
	default:
		return PersonalScope()
	}
}

func (s Scope) Equal(other Scope) bool {
	return s.Kind == other.Kind &&
		s.CourseID == other.CourseID &&
		s.OrderID == other.OrderID
}

// Columns returns the nullable pair persisted for this scope.
func (s Scope) Columns() (courseID, orderID *uint) {
	switch s.Kind {
	case ScopeCourse:
		id := s.CourseID
		return &id, nil
	case ScopeOrder:
		id := s.OrderID
		return nil, &id
	default:
		return nil, nil
	}
}

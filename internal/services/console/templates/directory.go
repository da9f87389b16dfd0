package templates

// UserRow is one platform account.
type UserRow struct {
	ID        string
	Email     string
	Role      string
	Verified  bool
	CreatedOn string
}

// UsersView is one page of platform accounts.
type UsersView struct {
	Items      []UserRow
	Roles      []string
	Page       int
	Pagination PaginationView
	Error      string
}

// AdminRow is one newsroom staff member.
type AdminRow struct {
	Name              string
	Department        string
	Position          string
	Group             string
	Status            string
	ArticlesPublished int
}

// AdminsView lists newsroom staff.
type AdminsView struct {
	Items []AdminRow
	Error string
}

var adminColumns = []string{"admins.name", "admins.department", "admins.position", "admins.group", "admins.status", "admins.published"}

func verifiedLabel(loc Localizer, verified bool) string {
	if verified {
		return T(loc, "users.yes")
	}
	return T(loc, "users.no")
}

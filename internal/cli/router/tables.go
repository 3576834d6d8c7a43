package router

// Route names of the notes shell
const (
	RouteLogin    = "Login"
	RouteNoteList = "NoteList"
	RouteNoteAdd  = "NoteAdd"
	RouteNoteEdit = "NoteEdit"
)

// Page routes of the movies shell
const (
	PageLogin   = "pages/login/login"
	PageIndex   = "pages/index/index"
	PageDetail  = "pages/movie/detail"
	PageWebView = "pages/webview/webview"
)

// NotesRoutes is the browser notes manager's route table
func NotesRoutes() *Table {
	return MustTable(RouteLogin, RouteNoteList,
		Route{Path: "/", Redirect: "/login"},
		Route{Name: RouteLogin, Path: "/login"},
		Route{Name: RouteNoteList, Path: "/notes", RequiresAuth: true},
		Route{Name: RouteNoteAdd, Path: "/notes/add", RequiresAuth: true},
		Route{Name: RouteNoteEdit, Path: "/notes/edit/:id", RequiresAuth: true},
	)
}

// MoviesPages is the mobile movie browser's page table
func MoviesPages() *Table {
	return MustTable(PageLogin, PageIndex,
		Route{Name: PageLogin, Path: "/" + PageLogin},
		Route{Name: PageIndex, Path: "/" + PageIndex, RequiresAuth: true},
		Route{Name: PageDetail, Path: "/" + PageDetail, RequiresAuth: true},
		Route{Name: PageWebView, Path: "/" + PageWebView},
	)
}

package appselect

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"

	"github.com/appshell-dev/appshell/internal/cli/config"
	"github.com/appshell-dev/appshell/internal/cli/userconfig"
)

// ResolveApp determines which app to use based on the following priority:
// 1. If appAlias flag is provided, use that app
// 2. If user has a selected app in their local config, use that
// 3. If only one app in project config, use that
// 4. Otherwise, prompt user to select an app interactively
func ResolveApp(projectConfig *config.Config, appAlias string) (*config.App, error) {
	if appAlias != "" {
		return projectConfig.GetAppByAlias(appAlias)
	}

	selected, err := userconfig.GetSelectedApp()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if selected != "" {
		app, err := projectConfig.GetAppByAlias(selected)
		if err != nil {
			// Selected app no longer exists in project config, clear it and continue
			_ = userconfig.SetSelectedApp("")
		} else {
			return app, nil
		}
	}

	if len(projectConfig.Apps) == 1 {
		app := &projectConfig.Apps[0]
		if err := userconfig.SetSelectedApp(app.Alias); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save selected app: %v\n", err)
		}
		return app, nil
	}

	app, err := PromptAppSelection(projectConfig)
	if err != nil {
		return nil, err
	}

	if err := userconfig.SetSelectedApp(app.Alias); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save selected app: %v\n", err)
	}

	return app, nil
}

// PromptAppSelection shows an interactive prompt for the user to select an app
func PromptAppSelection(projectConfig *config.Config) (*config.App, error) {
	if len(projectConfig.Apps) == 0 {
		return nil, fmt.Errorf("no apps configured in %s", config.ConfigFileName)
	}

	type appOption struct {
		Label string
		App   *config.App
	}

	options := make([]appOption, len(projectConfig.Apps))
	for i := range projectConfig.Apps {
		app := &projectConfig.Apps[i]
		options[i] = appOption{
			Label: Label(app),
			App:   app,
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select an app",
		Items:     options,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("app selection cancelled: %w", err)
	}

	return options[index].App, nil
}

// Label describes an app and where its requests go
func Label(app *config.App) string {
	env := app.Environment()
	target := env.ResolvedBaseURL()
	if target == "" {
		target = "via " + env.PageOrigin
	}
	return fmt.Sprintf("%s [%s, %s/%s] %s", app.Alias, app.Kind, env.Platform, env.Mode, target)
}

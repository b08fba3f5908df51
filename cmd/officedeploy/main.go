// cmd/officedeploy/main.go

package main

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/spf13/pflag"
	"golang.org/x/sys/windows"
	"gopkg.in/yaml.v3"

	"github.com/windowsadmins/officedeploy/pkg/config"
	"github.com/windowsadmins/officedeploy/pkg/inventory"
	"github.com/windowsadmins/officedeploy/pkg/legacy"
	"github.com/windowsadmins/officedeploy/pkg/logging"
	"github.com/windowsadmins/officedeploy/pkg/odt"
	"github.com/windowsadmins/officedeploy/pkg/product"
	"github.com/windowsadmins/officedeploy/pkg/toolkit"
	"github.com/windowsadmins/officedeploy/pkg/version"
)

var logger *logging.Logger

func main() {
	patchWindowsArgs()

	// Define command-line flags.
	productFlag := pflag.StringP("product", "p", string(product.O365ProPlusRetail), "Product edition to deploy.")
	typeFlag := pflag.StringP("type", "t", "install", "Deployment type: install or uninstall.")
	modeFlag := pflag.StringP("mode", "m", "interactive", "Deployment mode: interactive, silent or noninteractive.")
	showConfig := pflag.Bool("show-config", false, "Display the current configuration and exit.")
	listProducts := pflag.Bool("list-products", false, "List deployable product editions and exit.")
	versionFlag := pflag.Bool("version", false, "Print the version and exit.")

	// Count the number of -v flags.
	var verbosity int
	pflag.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (e.g. -v, -vv, -vvv)")
	pflag.Parse()

	if *versionFlag {
		version.Print()
		os.Exit(toolkit.ExitSuccess)
	}
	if *listProducts {
		for _, id := range product.Catalog() {
			fmt.Printf("%-20s %s (%s)\n", id, id.Family(), id.Tier())
		}
		os.Exit(toolkit.ExitSuccess)
	}

	// Load configuration (only once)
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(toolkit.ExitBootstrapFailure)
	}

	// Dynamically override LogLevel based on the number of -v flags.
	// 0 => configured level, 1 => WARN, 2 => INFO, 3+ => DEBUG
	switch verbosity {
	case 0:
	case 1:
		cfg.LogLevel = "WARN"
	case 2:
		cfg.LogLevel = "INFO"
	default:
		cfg.LogLevel = "DEBUG"
	}

	logger = logging.New(verbosity > 0)
	if err := logging.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(toolkit.ExitBootstrapFailure)
	}

	if *showConfig {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			logger.Fatal("Failed to serialize configuration: %v", err)
		}
		fmt.Print(string(data))
		logging.CloseLogger(toolkit.ExitSuccess)
		os.Exit(toolkit.ExitSuccess)
	}

	deployType, err := toolkit.ParseDeployType(*typeFlag)
	if err != nil {
		logger.Error("%v", err)
		logging.CloseLogger(toolkit.ExitGenericFailure)
		os.Exit(toolkit.ExitGenericFailure)
	}
	deployMode, err := toolkit.ParseDeployMode(*modeFlag)
	if err != nil {
		logger.Error("%v", err)
		logging.CloseLogger(toolkit.ExitGenericFailure)
		os.Exit(toolkit.ExitGenericFailure)
	}
	requested, err := product.Parse(*productFlag)
	if err != nil {
		logger.Error("%v (use --list-products for valid values)", err)
		logging.CloseLogger(toolkit.ExitInvalidProduct)
		os.Exit(toolkit.ExitInvalidProduct)
	}

	// Check administrative privileges.
	admin, adminErr := adminCheck()
	if adminErr != nil || !admin {
		logger.Error("Administrative access required. Error: %v, Admin: %v", adminErr, admin)
		logging.CloseLogger(toolkit.ExitBootstrapFailure)
		os.Exit(toolkit.ExitBootstrapFailure)
	}

	// The deployment tool binary must be staged before any business logic runs.
	if _, err := os.Stat(cfg.SetupPath); err != nil {
		logger.Error("Deployment tool not found at %s: %v", cfg.SetupPath, err)
		logging.CloseLogger(toolkit.ExitBootstrapFailure)
		os.Exit(toolkit.ExitBootstrapFailure)
	}

	session := toolkit.NewSession(cfg, deployType, deployMode)

	defer func() {
		if r := recover(); r != nil {
			logging.Error("Unhandled failure during deployment", "panic", r)
			session.ShowError(fmt.Sprintf("The Office deployment failed unexpectedly: %v", r))
			logging.CloseLogger(toolkit.ExitGenericFailure)
			os.Exit(toolkit.ExitGenericFailure)
		}
	}()

	logging.Info("Starting deployment session",
		"product", requested,
		"type", string(deployType),
		"mode", string(deployMode),
		"version", version.Version().Version)
	toolkit.CollectMachineFacts().Log()

	var code int
	switch deployType {
	case toolkit.DeployInstall:
		code = runInstall(session, requested)
	case toolkit.DeployUninstall:
		code = runUninstall(session, requested)
	}
	session.ExitScript(code)
}

// runInstall drives the install flow: pre-checks, reconciliation, legacy
// removal, configuration generation, and the terminal installer call whose
// exit code becomes the run's result.
func runInstall(s *toolkit.Session, requested product.ID) int {
	if err := s.ShowWelcome(); err != nil {
		switch err {
		case toolkit.ErrDeferred:
			return toolkit.ExitDeferred
		case toolkit.ErrDiskSpace:
			s.ShowError("There is not enough free disk space to install Office.")
			return toolkit.ExitDiskSpace
		default:
			logging.Error("Pre-installation checks failed", "error", err)
			return toolkit.ExitGenericFailure
		}
	}
	s.ShowProgress(fmt.Sprintf("Installing %s...", requested))

	c2r, err := inventory.ReadClickToRun()
	if err != nil {
		logging.Warn("Could not read Click-to-Run state, assuming fresh machine", "error", err)
		c2r = inventory.ClickToRun{}
	}

	if outdated, err := inventory.BuildOutdated(c2r.Version, s.Config.MinimumBuild); err != nil {
		logging.Warn("Could not compare installed build against minimum", "error", err)
	} else if outdated {
		logging.Info("Installed build is older than the minimum",
			"installed", c2r.Version, "minimum", s.Config.MinimumBuild)
	}

	result, err := product.Reconcile(requested, c2r.Inventory(),
		platformForEdition(s.Config.ClientEdition), s.Config.Channel)
	if err != nil {
		logging.Error("Edition reconciliation failed", "error", err)
		return toolkit.ExitInvalidProduct
	}
	logReconciliation(result)

	legacyRemoved := removeLegacyVersions(s)

	if c2r.Installed && legacy.NeedClickToRunRemoval(legacyRemoved, result.ChannelMigration, result.PlatformMigration) {
		if code := legacy.RemoveClickToRun(s.Config.SupportFilesPath, s.Runner); code != 0 {
			s.RecordExitCode(code)
		}
	}

	doc := odt.InstallDocument(result.TargetSet, odtOptions(s))
	if err := odt.Write(doc, s.Config.ConfigXMLPath); err != nil {
		logging.Error("Failed to write deployment configuration", "error", err)
		s.ShowError("The Office deployment configuration could not be written.")
		return toolkit.ExitGenericFailure
	}

	return runSetup(s, requested)
}

// runUninstall removes only the requested product.
func runUninstall(s *toolkit.Session, requested product.ID) int {
	if err := s.ShowWelcome(); err != nil {
		switch err {
		case toolkit.ErrDeferred:
			return toolkit.ExitDeferred
		case toolkit.ErrDiskSpace:
			// Removal frees space, so a full disk never blocks it.
			logging.Warn("Low disk space, continuing with removal")
		default:
			logging.Error("Pre-removal checks failed", "error", err)
			return toolkit.ExitGenericFailure
		}
	}
	s.ShowProgress(fmt.Sprintf("Uninstalling %s...", requested))

	doc := odt.UninstallDocument([]product.ID{requested}, odtOptions(s))
	if err := odt.Write(doc, s.Config.ConfigXMLPath); err != nil {
		logging.Error("Failed to write deployment configuration", "error", err)
		s.ShowError("The Office deployment configuration could not be written.")
		return toolkit.ExitGenericFailure
	}

	return runSetup(s, requested)
}

// runSetup invokes the deployment tool with the generated configuration.
// This is the terminal call of the run.
func runSetup(s *toolkit.Session, requested product.ID) int {
	logging.Info("Invoking deployment tool",
		"setup", s.Config.SetupPath, "configuration", s.Config.ConfigXMLPath)

	code, output, err := s.Runner.Run(s.Config.SetupPath, "/configure", s.Config.ConfigXMLPath)
	if err != nil {
		logging.Error("Failed to launch deployment tool", "error", err)
		s.ShowError("The Office deployment tool could not be started.")
		return toolkit.ExitGenericFailure
	}
	if code != 0 {
		logging.Error("Deployment tool finished with errors", "exit_code", code, "output", output)
		s.ShowError(fmt.Sprintf("The %s deployment failed with code %d.", requested, code))
		return code
	}

	logging.Info("Deployment tool finished successfully", "product", requested)
	if pending := s.ExitCode(); pending != 0 {
		logging.Warn("Earlier steps reported failures", "exit_code", pending)
	}
	return toolkit.ExitSuccess
}

// removeLegacyVersions detects and scrubs MSI-based Office releases. Returns
// whether any removal was attempted.
func removeLegacyVersions(s *toolkit.Session) bool {
	apps, err := inventory.InstalledApplications()
	if err != nil {
		logging.Warn("Could not enumerate installed applications", "error", err)
		return false
	}

	tags := legacy.Detect(inventory.DisplayNames(apps))
	if len(tags) == 0 {
		logging.Debug("No legacy Office installations detected")
		return false
	}

	results := legacy.Remove(tags, s.Config.SupportFilesPath, s.Runner)
	for _, code := range results {
		if code != 0 {
			s.RecordExitCode(code)
		}
	}
	return true
}

func logReconciliation(result product.Result) {
	logging.Info("Reconciled target edition set", "target_set", result.TargetSet)
	for _, m := range result.Migrations {
		logging.Info("Edition migration", "from", m.From, "to", m.To)
	}
	if result.PlatformMigration {
		logging.Info("Platform migration required")
	}
	if result.ChannelMigration {
		logging.Info("Channel migration required")
	}
}

func odtOptions(s *toolkit.Session) odt.Options {
	return odt.Options{
		ClientEdition: s.Config.ClientEdition,
		Channel:       s.Config.Channel,
		Languages:     s.Config.Languages,
		LogDir:        logging.GetCurrentLogDir(),
	}
}

// platformForEdition maps the configured client edition to the platform tag
// the Click-to-Run registry reports.
func platformForEdition(clientEdition string) string {
	if clientEdition == "32" {
		return "x86"
	}
	return "x64"
}

// adminCheck verifies whether the current process has administrative privileges.
func adminCheck() (bool, error) {
	var adminSid *windows.SID
	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&adminSid)
	if err != nil {
		return false, err
	}
	defer windows.FreeSid(adminSid)
	token := windows.Token(0)
	isMember, err := token.IsMember(adminSid)
	return isMember, err
}

// patchWindowsArgs re-parses the raw Windows command line so that os.Args
// exactly matches what the user typed, including paths with spaces.
func patchWindowsArgs() {
	cmdLinePtr := windows.GetCommandLine()
	if cmdLinePtr == nil {
		return
	}
	var argc int32
	argvPtr, err := windows.CommandLineToArgv(cmdLinePtr, &argc)
	if err != nil || argvPtr == nil || argc < 1 {
		return
	}
	defer windows.LocalFree(windows.Handle(uintptr(unsafe.Pointer(argvPtr))))

	argvSlice := unsafe.Slice((**uint16)(unsafe.Pointer(argvPtr)), argc)

	newArgs := make([]string, 0, argc)
	for _, p := range argvSlice {
		if p != nil {
			newArgs = append(newArgs, windows.UTF16PtrToString(p))
		}
	}
	os.Args = newArgs
}

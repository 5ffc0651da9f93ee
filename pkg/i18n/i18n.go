package i18n

type Messages struct {
	MenuTitle       string
	MenuQuickScan   string
	MenuMediumScan  string
	MenuLargeScan   string
	MenuMegaScan    string
	MenuCustomScan  string
	MenuStats       string
	MenuExport      string
	MenuDecrypt     string
	MenuExit        string
	UnknownCommand  string
	ExitText        string
	CustomPrompt    string
	InvalidNumber   string
	ConfirmBigScan  string
	Cancelled       string
	PasswordPrompt  string
	HintPrompt      string
	EmptyPassword   string
	FoundFilePrompt string
	InputsDirPrompt string
}

func Get(lang string) Messages {
	switch lang {
	case "ru":
		return Messages{
			MenuTitle:       "walletscan — стартовое меню",
			MenuQuickScan:   "1) Быстрый скан      (10 кошельков)",
			MenuMediumScan:  "2) Средний скан      (100 кошельков)",
			MenuLargeScan:   "3) Большой скан      (1 000 кошельков)",
			MenuMegaScan:    "4) Мега скан         (10 000 кошельков)",
			MenuCustomScan:  "5) Свой объём        (ввести количество)",
			MenuStats:       "6) Статистика        (счётчики последнего запуска)",
			MenuExport:      "7) Экспорт found -> keystore",
			MenuDecrypt:     "8) Дешифрация keystore -> raw",
			MenuExit:        "0) Выход",
			UnknownCommand:  "Неизвестная команда:",
			ExitText:        "Выход",
			CustomPrompt:    "Сколько кошельков проверить: ",
			InvalidNumber:   "Некорректное число (нужно >= 1)",
			ConfirmBigScan:  "Скан большого объёма может занять много времени. Продолжить? (yes/no): ",
			Cancelled:       "Отменено.",
			PasswordPrompt:  "Пароль keystore: ",
			HintPrompt:      "Подсказка к паролю (опционально, сохранится в hint.txt): ",
			EmptyPassword:   "Пустой пароль, операция отменена.",
			FoundFilePrompt: "Путь к found.jsonl: ",
			InputsDirPrompt: "Путь к папке с keystore файлами: ",
		}
	default: // "en"
		return Messages{
			MenuTitle:       "walletscan — start menu",
			MenuQuickScan:   "1) Quick scan        (10 wallets)",
			MenuMediumScan:  "2) Medium scan       (100 wallets)",
			MenuLargeScan:   "3) Large scan        (1,000 wallets)",
			MenuMegaScan:    "4) Mega scan         (10,000 wallets)",
			MenuCustomScan:  "5) Custom scan       (enter amount)",
			MenuStats:       "6) View statistics   (last run counters)",
			MenuExport:      "7) Export found -> keystore",
			MenuDecrypt:     "8) Decrypt keystore -> raw",
			MenuExit:        "0) Exit",
			UnknownCommand:  "Unknown command:",
			ExitText:        "Exit",
			CustomPrompt:    "Number of wallets to scan: ",
			InvalidNumber:   "Invalid number (must be >= 1)",
			ConfirmBigScan:  "Scanning this many wallets may take a while. Continue? (yes/no): ",
			Cancelled:       "Cancelled.",
			PasswordPrompt:  "Keystore password: ",
			HintPrompt:      "Optional password hint (saved to hint.txt): ",
			EmptyPassword:   "Empty password, operation cancelled.",
			FoundFilePrompt: "Path to found.jsonl: ",
			InputsDirPrompt: "Path to keystore files dir: ",
		}
	}
}

package console

// banner is printed when the menu starts.
const banner = `
        _____                    _____                    _____                    _____
       /\    \                  /\    \                  /\    \                  /\    \
      /::\    \                /::\    \                /::\    \                /::\    \
     /::::\    \              /::::\    \               \:::\    \               \:::\    \
    /::::::\    \            /::::::\    \               \:::\    \               \:::\    \
   /:::/\:::\    \          /:::/\:::\    \               \:::\    \               \:::\    \
  /:::/__\:::\    \        /:::/__\:::\    \               \:::\    \               \:::\    \
 /::::\   \:::\    \      /::::\   \:::\    \              /::::\    \              /::::\    \
/::::::\   \:::\    \    /::::::\   \:::\    \    ____    /::::::\    \    ____    /::::::\    \
/:::/\:::\   \:::\    \  /:::/\:::\   \:::\____\  /\   \  /:::/\:::\    \  /\   \  /:::/\:::\    \
/:::/__\:::\   \:::\____\/:::/  \:::\   \:::|    |/::\   \/:::/  \:::\____\/::\   \/:::/  \:::\____\
\:::\   \:::\   \::/    /\::/   |::::\  /:::|____|\:::\  /:::/    \::/    /\:::\  /:::/    \::/    /
 \:::\   \:::\   \/____/  \/____|:::::\/:::/    /  \:::\/:::/    / \/____/  \:::\/:::/    / \/____/
  \:::\   \:::\    \            |:::::::::/    /    \::::::/    /            \::::::/    /
   \:::\   \:::\____\           |::|\::::/    /      \::::/____/              \::::/____/
    \:::\   \::/    /           |::| \::/____/        \:::\    \               \:::\    \
     \:::\   \/____/            |::|  ~|               \:::\    \               \:::\    \
      \:::\    \                |::|   |                \:::\    \               \:::\    \
       \:::\____\               \::|   |                 \:::\____\               \:::\____\
        \::/    /                \:|   |                  \::/    /                \::/    /
         \/____/                  \|___|                   \/____/                  \/____/
`

package common

// ColorPrimary is the embed color for price replies
const ColorPrimary = 0x5865F2 // Discord blurple

// SystemErrorMessage is the reply for failures the user cannot fix
const SystemErrorMessage = "Something went wrong. Please try again later."
